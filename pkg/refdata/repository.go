package refdata

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/saudelink/platform/pkg/common/faults"
	"github.com/saudelink/platform/pkg/common/logger"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository resolves reference entities with a redis read-through cache in
// front of Postgres. A nil cache client degrades to straight DB lookups.
type Repository struct {
	db       *gorm.DB
	cache    *redis.Client
	cacheTTL time.Duration
}

func NewRepository(db *gorm.DB, cache *redis.Client, cacheTTL time.Duration) *Repository {
	return &Repository{db: db, cache: cache, cacheTTL: cacheTTL}
}

func (r *Repository) AutoMigrate() error {
	return r.db.AutoMigrate(&Country{}, &State{}, &City{}, &Gender{}, &Race{}, &Nationality{}, &ConditionCode{})
}

// Seed upserts the demographic category tables from the closed wire sets and
// the condition codes from the catalog. Idempotent, safe across restarts.
func (r *Repository) Seed(ctx context.Context, catalog Catalog) error {
	for _, slug := range Genders {
		if err := r.upsertRow(ctx, &Gender{Slug: slug, Name: slug}); err != nil {
			return err
		}
	}
	for _, slug := range Races {
		if err := r.upsertRow(ctx, &Race{Slug: slug, Name: slug}); err != nil {
			return err
		}
	}
	for _, slug := range Nationalities {
		if err := r.upsertRow(ctx, &Nationality{Slug: slug, Name: slug}); err != nil {
			return err
		}
	}
	codes := catalog.Codes()
	if len(codes) > 0 {
		if err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "id"}},
			DoUpdates: clause.AssignmentColumns([]string{"description"}),
		}).Create(&codes).Error; err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) upsertRow(ctx context.Context, row interface{}) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(row).Error
}

func (r *Repository) CityByCode(ctx context.Context, code string) (*City, error) {
	city := &City{}
	if err := r.lookup(ctx, "refdata:city:"+code, city, func() error {
		return r.db.WithContext(ctx).First(city, "code = ?", code).Error
	}); err != nil {
		return nil, notFoundOr("city", code, err)
	}
	return city, nil
}

func (r *Repository) StateByCode(ctx context.Context, code string) (*State, error) {
	state := &State{}
	if err := r.lookup(ctx, "refdata:state:"+code, state, func() error {
		return r.db.WithContext(ctx).First(state, "code = ?", code).Error
	}); err != nil {
		return nil, notFoundOr("state", code, err)
	}
	return state, nil
}

func (r *Repository) CountryByCode(ctx context.Context, code string) (*Country, error) {
	country := &Country{}
	if err := r.lookup(ctx, "refdata:country:"+code, country, func() error {
		return r.db.WithContext(ctx).First(country, "code = ?", code).Error
	}); err != nil {
		return nil, notFoundOr("country", code, err)
	}
	return country, nil
}

func (r *Repository) GenderBySlug(ctx context.Context, slug string) (*Gender, error) {
	gender := &Gender{}
	if err := r.lookup(ctx, "refdata:gender:"+slug, gender, func() error {
		return r.db.WithContext(ctx).First(gender, "slug = ?", slug).Error
	}); err != nil {
		return nil, notFoundOr("gender", slug, err)
	}
	return gender, nil
}

func (r *Repository) RaceBySlug(ctx context.Context, slug string) (*Race, error) {
	race := &Race{}
	if err := r.lookup(ctx, "refdata:race:"+slug, race, func() error {
		return r.db.WithContext(ctx).First(race, "slug = ?", slug).Error
	}); err != nil {
		return nil, notFoundOr("race", slug, err)
	}
	return race, nil
}

func (r *Repository) NationalityBySlug(ctx context.Context, slug string) (*Nationality, error) {
	nationality := &Nationality{}
	if err := r.lookup(ctx, "refdata:nationality:"+slug, nationality, func() error {
		return r.db.WithContext(ctx).First(nationality, "slug = ?", slug).Error
	}); err != nil {
		return nil, notFoundOr("nationality", slug, err)
	}
	return nationality, nil
}

func (r *Repository) ConditionCodeByValue(ctx context.Context, codeType, value string) (*ConditionCode, error) {
	code := &ConditionCode{}
	if err := r.lookup(ctx, "refdata:code:"+codeType+":"+value, code, func() error {
		return r.db.WithContext(ctx).First(code, "type = ? AND value = ?", codeType, value).Error
	}); err != nil {
		return nil, notFoundOr(codeType+" code", value, err)
	}
	return code, nil
}

// lookup fills dest from cache when present, otherwise from the DB query,
// writing back to cache on a hit. Cache failures only log; the DB answer
// wins.
func (r *Repository) lookup(ctx context.Context, key string, dest interface{}, query func() error) error {
	if r.cache != nil {
		cached, err := r.cache.Get(ctx, key).Bytes()
		if err == nil {
			if unmarshalErr := json.Unmarshal(cached, dest); unmarshalErr == nil {
				return nil
			}
		} else if !errors.Is(err, redis.Nil) {
			logger.Log.WithError(err).WithField("key", key).Warn("reference cache read failed")
		}
	}

	if err := query(); err != nil {
		return err
	}

	if r.cache != nil {
		if encoded, err := json.Marshal(dest); err == nil {
			if err := r.cache.Set(ctx, key, encoded, r.cacheTTL).Err(); err != nil {
				logger.Log.WithError(err).WithField("key", key).Warn("reference cache write failed")
			}
		}
	}
	return nil
}

func notFoundOr(entity, id string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return faults.NewNotFound(entity, id)
	}
	return err
}
