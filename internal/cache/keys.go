package cache

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgryski/go-farm"
	"github.com/google/uuid"

	"blogql/internal/models"
)

// TTLs for cached entries.
const (
	PostTTL      = 120 * time.Second
	PostsPageTTL = 60 * time.Second
	UserTTL      = 300 * time.Second
)

// PostsPageClass is the invalidation class for every listing and search
// page. Any post write drops the whole class.
const PostsPageClass = "posts_page"

// PostsPagePatterns match every key in PostsPageClass.
var PostsPagePatterns = []string{"posts_page_*", "posts_search_*"}

// PostKey is the key of a single cached post.
func PostKey(id uuid.UUID) string {
	return "post:" + id.String()
}

// UserKey is the key of the cached actor for a user id.
func UserKey(id uuid.UUID) string {
	return "user:id:" + id.String()
}

// PostsPageKey is the key of one page of the unfiltered listing.
func PostsPageKey(p models.Pagination) string {
	return fmt.Sprintf("posts_page_%d_%d", p.Page, p.PageSize)
}

// PostsSearchKey is the key of one page of a filtered listing. The filter
// is fingerprinted from its JSON form, whose field order is fixed by the
// struct, so equal criteria always share a key.
func PostsSearchKey(f models.PostFilter, p models.Pagination) string {
	raw, _ := json.Marshal(f)
	return fmt.Sprintf("posts_search_%016x_%d_%d", farm.Fingerprint64(raw), p.Page, p.PageSize)
}
