package backend

import (
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/softmembers/soft-members/pkg/db/models"
)

// cache holds membership types, with their custom fields, by id.
type cache struct {
	b     *Backend
	types *lru.Cache[string, models.MembershipType]
}

func newCache(b *Backend, size int) *cache {
	if size <= 0 {
		size = 1
	}
	c := &cache{b: b}
	cache, _ := lru.New[string, models.MembershipType](size)
	c.types = cache
	return c
}

func (c *cache) Get(id string) (models.MembershipType, bool) {
	return c.types.Get(id)
}

func (c *cache) Set(id string, mt models.MembershipType) {
	c.types.Add(id, mt)
}

func (c *cache) Delete(id string) {
	c.types.Remove(id)
}

func (c *cache) Len() int {
	return c.types.Len()
}
