package client

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
)

func itoa(n int) string { return strconv.Itoa(n) }

// Resource wraps the uniform list/get/stats/create/update/delete routes of
// one entity. Writes invalidate the entity's namespace.
type Resource[T, C, U any] struct {
	c         *Client
	namespace string
	path      string
	group     string
}

func newResource[T, C, U any](c *Client, namespace, path, group string) *Resource[T, C, U] {
	return &Resource[T, C, U]{c: c, namespace: namespace, path: path, group: group}
}

type (
	SkillService     = Resource[SkillModel, CreateSkillRequest, UpdateSkillRequest]
	EducationService = Resource[EducationModel, CreateEducationRequest, UpdateEducationRequest]
)

func (r *Resource[T, C, U]) list(ctx context.Context, op, path string, q ListQuery) (*Page[T], error) {
	params := q.values()
	return Query(ctx, r.c.cache, r.namespace, op, r.c.scoped(params), func(ctx context.Context) (*Page[T], error) {
		var items []T
		p, err := r.c.doJSON(ctx, http.MethodGet, path, params, nil, &items)
		if err != nil {
			return nil, err
		}
		page := &Page[T]{Items: items}
		if p != nil {
			page.Pagination = *p
		}
		return page, nil
	})
}

func (r *Resource[T, C, U]) List(ctx context.Context, q ListQuery) (*Page[T], error) {
	return r.list(ctx, "list", r.path, q)
}

// ByGroup lists the records whose group field equals value, e.g. skills by
// category.
func (r *Resource[T, C, U]) ByGroup(ctx context.Context, value string, q ListQuery) (*Page[T], error) {
	return r.list(ctx, "group:"+value, r.path+"/"+r.group+"/"+url.PathEscape(value), q)
}

func (r *Resource[T, C, U]) Get(ctx context.Context, id string) (T, error) {
	return Query(ctx, r.c.cache, r.namespace, "get:"+id, r.c.scoped(nil), func(ctx context.Context) (T, error) {
		var out T
		_, err := r.c.doJSON(ctx, http.MethodGet, r.path+"/"+url.PathEscape(id), nil, nil, &out)
		return out, err
	})
}

func (r *Resource[T, C, U]) Stats(ctx context.Context) (map[string]any, error) {
	return Query(ctx, r.c.cache, r.namespace, "stats", r.c.scoped(nil), func(ctx context.Context) (map[string]any, error) {
		out := map[string]any{}
		_, err := r.c.doJSON(ctx, http.MethodGet, r.path+"/stats", nil, nil, &out)
		return out, err
	})
}

func (r *Resource[T, C, U]) Create(ctx context.Context, in C) (T, error) {
	var out T
	_, err := r.c.doJSON(ctx, http.MethodPost, r.path, nil, in, &out)
	if err == nil {
		r.c.cache.Invalidate(r.namespace)
	}
	return out, err
}

func (r *Resource[T, C, U]) Update(ctx context.Context, id string, in U) (T, error) {
	var out T
	_, err := r.c.doJSON(ctx, http.MethodPut, r.path+"/"+url.PathEscape(id), nil, in, &out)
	if err == nil {
		r.c.cache.Invalidate(r.namespace)
	}
	return out, err
}

func (r *Resource[T, C, U]) Delete(ctx context.Context, id string) error {
	_, err := r.c.doJSON(ctx, http.MethodDelete, r.path+"/"+url.PathEscape(id), nil, nil, nil)
	if err == nil {
		r.c.cache.Invalidate(r.namespace)
	}
	return err
}
