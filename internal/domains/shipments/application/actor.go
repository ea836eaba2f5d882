package application

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/domain"
	"github.com/Apurer/go-gin-shipment-api/internal/domains/shipments/ports"
)

// ActorResolver maps an authenticated caller to the attribution recorded on milestones.
type ActorResolver struct {
	directory ports.UserDirectory
	logger    *slog.Logger
}

// NewActorResolver wires the resolver with an optional user directory.
func NewActorResolver(directory ports.UserDirectory, logger *slog.Logger) *ActorResolver {
	if logger == nil {
		logger = defaultLogger()
	}
	return &ActorResolver{directory: directory, logger: logger}
}

// Resolve never fails. A lookup miss or error keeps only the user id.
func (r *ActorResolver) Resolve(ctx context.Context, userID string) domain.Actor {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Actor{}
	}
	actor := domain.Actor{UserID: userID}
	if r == nil || r.directory == nil {
		return actor
	}
	entry, err := r.directory.FindByID(ctx, userID)
	if err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "actor lookup failed",
			slog.String("user.id", userID), slog.String("error", err.Error()))
		return actor
	}
	if entry != nil {
		actor.WalletAddress = strings.TrimSpace(entry.WalletAddress)
	}
	return actor
}
