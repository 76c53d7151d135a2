package infrastructure

import (
	"context"
	"net/url"

	"github.com/jellydator/ttlcache/v3"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/yourusername/media-batch-go/internal/domain"
)

// collectionParam is the query parameter whose presence marks a collection
// URL when engine inspection is unavailable.
const collectionParam = "list"

// Classifier decides whether a URL names a single item or a collection.
// Results are memoized per process by exact URL string; two URLs differing
// only by query-parameter order occupy separate entries. Concurrent
// classifications of the same URL are collapsed into one inspection.
type Classifier struct {
	engine domain.Engine
	cache  *ttlcache.Cache[string, domain.Classification]
	group  singleflight.Group
	log    *zap.Logger
}

// NewClassifier creates a classifier backed by the given engine
func NewClassifier(engine domain.Engine, log *zap.Logger) *Classifier {
	return &Classifier{
		engine: engine,
		cache:  ttlcache.New[string, domain.Classification](),
		log:    log,
	}
}

// Classify returns the classification for rawURL. It never fails: an
// inspection error degrades to a query-string heuristic instead of
// propagating.
func (c *Classifier) Classify(ctx context.Context, rawURL string) domain.Classification {
	if item := c.cache.Get(rawURL); item != nil {
		return item.Value()
	}

	v, _, _ := c.group.Do(rawURL, func() (interface{}, error) {
		if item := c.cache.Get(rawURL); item != nil {
			return item.Value(), nil
		}
		result := c.inspect(ctx, rawURL)
		c.cache.Set(rawURL, result, ttlcache.NoTTL)
		return result, nil
	})
	return v.(domain.Classification)
}

func (c *Classifier) inspect(ctx context.Context, rawURL string) domain.Classification {
	info, err := c.engine.Inspect(ctx, rawURL)
	if err != nil || info == nil {
		if c.log != nil {
			c.log.Debug("inspection failed, falling back to URL heuristic",
				zap.String("url", rawURL),
				zap.Error(err))
		}
		return fallbackClassify(rawURL)
	}
	return domain.Classification{
		URL:          rawURL,
		IsCollection: info.IsCollection(),
		Info:         info,
	}
}

// fallbackClassify treats the presence of the collection-identifier query
// parameter as sufficient evidence of a collection. Conservative: URLs
// whose collection signal is not exposed that way are classified single.
func fallbackClassify(rawURL string) domain.Classification {
	result := domain.Classification{URL: rawURL}
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return result
	}
	result.IsCollection = parsed.Query().Has(collectionParam)
	return result
}
