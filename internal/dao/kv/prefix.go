package kv

import "context"

// prefixStore 给所有键加上固定前缀，便于同一存储内多账号隔离
type prefixStore struct {
	inner  Store
	prefix string
}

// WithPrefix 包装 Store，prefix 为空时原样返回
func WithPrefix(s Store, prefix string) Store {
	if prefix == "" {
		return s
	}
	return &prefixStore{inner: s, prefix: prefix}
}

func (p *prefixStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return p.inner.Get(ctx, p.prefix+key)
}

func (p *prefixStore) Set(ctx context.Context, key string, value []byte) error {
	return p.inner.Set(ctx, p.prefix+key, value)
}

func (p *prefixStore) Remove(ctx context.Context, key string) error {
	return p.inner.Remove(ctx, p.prefix+key)
}

func (p *prefixStore) MultiGet(ctx context.Context, keys []string) (map[string][]byte, error) {
	prefixed := make([]string, len(keys))
	for i, k := range keys {
		prefixed[i] = p.prefix + k
	}
	values, err := p.inner.MultiGet(ctx, prefixed)
	if err != nil {
		return nil, err
	}
	out := make(map[string][]byte, len(values))
	for i, k := range prefixed {
		if v, ok := values[k]; ok {
			out[keys[i]] = v
		}
	}
	return out, nil
}

func (p *prefixStore) MultiSet(ctx context.Context, entries map[string][]byte) error {
	prefixed := make(map[string][]byte, len(entries))
	for k, v := range entries {
		prefixed[p.prefix+k] = v
	}
	return p.inner.MultiSet(ctx, prefixed)
}

func (p *prefixStore) Close() error { return p.inner.Close() }
