package resolver

import (
	"context"

	"bazaar-chat/internal/aggregate"
	"bazaar-chat/internal/redis"
	"bazaar-chat/internal/repository"
	bazaar_errors "bazaar-chat/pkg/errors"
	"bazaar-chat/pkg/logger"

	"github.com/google/uuid"
)

// UserResolver batch-resolves display profiles, consulting the redis
// profile cache before the database. Ids that exist nowhere are left out
// of the result; the aggregator substitutes its sentinel.
type UserResolver struct {
	users repository.UserRepository
	cache *redis.ProfileCache
	log   *logger.Logger
}

func NewUserResolver(users repository.UserRepository, cache *redis.ProfileCache, log *logger.Logger) *UserResolver {
	return &UserResolver{users: users, cache: cache, log: log}
}

func (r *UserResolver) ResolveUsers(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]aggregate.Profile, error) {
	unique := dedupe(ids)
	resolved := make(map[uuid.UUID]aggregate.Profile, len(unique))

	missing := unique
	if r.cache != nil {
		cached := r.cache.GetMany(ctx, unique)
		missing = missing[:0]
		for _, id := range unique {
			if p, ok := cached[id]; ok {
				resolved[id] = aggregate.Profile{ID: p.ID, Name: p.Name, AvatarURL: p.AvatarURL}
			} else {
				missing = append(missing, id)
			}
		}
	}

	if len(missing) > 0 {
		rows, err := r.users.GetByIDs(ctx, missing)
		if err != nil {
			return nil, bazaar_errors.Store("resolve users", err)
		}
		for _, row := range rows {
			profile := aggregate.Profile{ID: row.ID, Name: row.DisplayName}
			if row.AvatarURL.Valid {
				profile.AvatarURL = row.AvatarURL.String
			}
			resolved[row.ID] = profile
			if r.cache != nil {
				r.cache.Set(ctx, redis.CachedProfile{ID: profile.ID, Name: profile.Name, AvatarURL: profile.AvatarURL})
			}
		}
	}

	return resolved, nil
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
