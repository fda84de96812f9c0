package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"net/http"
	"stix-ui/app/server/constants"
	"stix-ui/app/server/models"
	"stix-ui/app/server/types"
	"time"
)

// heartbeat returns the current heartbeat, starting it when there is none yet.
// A fresh heartbeat makes every mirror resync once.
func (a *App) heartbeat(ctx context.Context) (int64, error) {
	updatedAt, err := a.rdb.Get(ctx, constants.CacheKeyExportHeartbeat).Int64()
	if err == nil {
		return updatedAt, nil
	} else if !errors.Is(err, redis.Nil) {
		return 0, fmt.Errorf("get heartbeat: %w", err)
	}

	updatedAt = time.Now().UnixMilli()
	if ok, err := a.rdb.SetNX(ctx, constants.CacheKeyExportHeartbeat, updatedAt, 0).Result(); err != nil {
		return 0, fmt.Errorf("set heartbeat: %w", err)
	} else if ok {
		return updatedAt, nil
	}

	// Someone else got there first
	if updatedAt, err = a.rdb.Get(ctx, constants.CacheKeyExportHeartbeat).Int64(); err != nil {
		return 0, fmt.Errorf("get heartbeat: %w", err)
	}
	return updatedAt, nil
}

func (a *App) ExportHeartbeat(c echo.Context) error {
	updatedAt, err := a.heartbeat(c.Request().Context())
	if err != nil {
		a.l.Error("heartbeat check cache", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	return c.JSON(http.StatusOK, &types.Heartbeat{
		UpdatedAt: updatedAt,
	})
}

func (a *App) ExportBundle(c echo.Context) error {
	rctx := c.Request().Context()

	// Bundles are cached per heartbeat, so one built before a change can never be served after it
	var cacheKey string
	if version, err := a.heartbeat(rctx); err != nil {
		a.l.Error("bundle check heartbeat", zap.Error(err))
	} else {
		cacheKey = fmt.Sprintf(constants.CacheKeyExportBundle, version)
	}

	// Check the cache
	if cacheKey != "" {
		if data, err := a.rdb.Get(rctx, cacheKey).Bytes(); err == nil {
			return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, data)
		} else if !errors.Is(err, redis.Nil) {
			a.l.Error("bundle check cache", zap.Error(err))
		}
	}

	// Build it and cache it
	bundle, err := a.buildBundle(rctx)
	if err != nil {
		a.l.Error("bundle build", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	resBytes, err := json.Marshal(bundle)
	if err != nil {
		a.l.Error("bundle json marshal", zap.Error(err))
		return a.er(c, http.StatusInternalServerError)
	}

	if cacheKey != "" {
		if err := a.rdb.Set(rctx, cacheKey, resBytes, constants.CacheExpireExportBundle).Err(); err != nil {
			a.l.Error("bundle set cache", zap.Error(err))
		}
	}

	return c.Blob(http.StatusOK, echo.MIMEApplicationJSON, resBytes)
}

func vocabName(entry *models.Vocabulary) string {
	if entry == nil {
		return ""
	}
	return entry.Name
}

func vocabNames(entries ...*models.Vocabulary) []string {
	var names []string
	for _, entry := range entries {
		if name := vocabName(entry); name != "" {
			names = append(names, name)
		}
	}
	return names
}

// base returns the shared vocabulary part of a preloaded relation, nil when unset.
func base[T any, PT models.VocabularyModel[T]](entry PT) *models.Vocabulary {
	if entry == nil {
		return nil
	}
	return entry.Base()
}

func domainObject(stixType string, id uuid.UUID, model *gorm.Model) types.DomainObject {
	return types.DomainObject{
		Type:        stixType,
		SpecVersion: types.StixSpecVersion,
		ID:          types.StixID(stixType, id),
		Created:     types.NewTimestamp(model.CreatedAt),
		Modified:    types.NewTimestamp(model.UpdatedAt),
	}
}

// buildBundle renders every STIX entity as one STIX 2.1 bundle.
func (a *App) buildBundle(ctx context.Context) (*types.Bundle, error) {
	db := a.db.WithContext(ctx)

	bundle := &types.Bundle{
		Type:    types.StixTypeBundle,
		ID:      types.StixID(types.StixTypeBundle, uuid.New()),
		Objects: []any{},
	}

	var identities []models.Identity
	if err := db.Preload("IdentityRole").Preload("IdentityClass").Order("id").Find(&identities).Error; err != nil {
		return nil, fmt.Errorf("list identities: %w", err)
	}
	for _, identity := range identities {
		bundle.Objects = append(bundle.Objects, &types.Identity{
			DomainObject:       domainObject(types.StixTypeIdentity, identity.StixID, &identity.Model),
			Name:               identity.Name,
			Description:        identity.Description,
			Roles:              vocabNames(base(identity.IdentityRole)),
			IdentityClass:      vocabName(base(identity.IdentityClass)),
			ContactInformation: identity.ContactInformation,
			Location:           identity.Location,
		})
	}

	var actors []models.ThreatActor
	if err := db.
		Preload("ThreatActorType").
		Preload("ThreatActorRole").
		Preload("Sophistication").
		Preload("ResourceLevel").
		Preload("PrimaryMotivation").
		Preload("SecondaryMotivation").
		Order("id").
		Find(&actors).Error; err != nil {
		return nil, fmt.Errorf("list threat actors: %w", err)
	}
	for _, actor := range actors {
		bundle.Objects = append(bundle.Objects, &types.ThreatActor{
			DomainObject:         domainObject(types.StixTypeThreatActor, actor.StixID, &actor.Model),
			Name:                 actor.Name,
			Description:          actor.Description,
			ThreatActorTypes:     vocabNames(base(actor.ThreatActorType)),
			Aliases:              actor.Aliases,
			FirstSeen:            types.NewTimestampP(actor.FirstSeen),
			LastSeen:             types.NewTimestampP(actor.LastSeen),
			Roles:                vocabNames(base(actor.ThreatActorRole)),
			Goals:                actor.Goals,
			Sophistication:       vocabName(base(actor.Sophistication)),
			ResourceLevel:        vocabName(base(actor.ResourceLevel)),
			PrimaryMotivation:    vocabName(base(actor.PrimaryMotivation)),
			SecondaryMotivations: vocabNames(base(actor.SecondaryMotivation)),
			PersonalMotivations:  actor.PersonalMotivations,
			ContactInformation:   actor.ContactInformation,
		})
	}

	var accounts []models.UserAccount
	if err := db.Order("id").Find(&accounts).Error; err != nil {
		return nil, fmt.Errorf("list user accounts: %w", err)
	}
	for _, account := range accounts {
		bundle.Objects = append(bundle.Objects, &types.UserAccount{
			Type:           types.StixTypeUserAccount,
			SpecVersion:    types.StixSpecVersion,
			ID:             types.StixID(types.StixTypeUserAccount, account.StixID),
			DisplayName:    account.Name,
			AccountType:    account.AccountType,
			AccountCreated: types.NewTimestampP(account.AccountCreated),
			IsDisabled:     account.AccountIsDisabled,
			Description:    account.Description,
		})
	}

	var posts []models.Post
	if err := db.Order("id").Find(&posts).Error; err != nil {
		return nil, fmt.Errorf("list posts: %w", err)
	}
	for _, post := range posts {
		bundle.Objects = append(bundle.Objects, &types.Note{
			DomainObject: domainObject(types.StixTypeNote, post.StixID, &post.Model),
			Abstract:     post.Description,
			Content:      post.Text,
		})
	}

	return bundle, nil
}
