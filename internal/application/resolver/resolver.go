// Package resolver finds or creates clients, vendors and catalog items by
// free-text name.
package resolver

import (
	"context"
	"errors"
	"fmt"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/application/event"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/catalog"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/partner"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/logger"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Kind is the type of entity being resolved
type Kind string

const (
	KindClient Kind = "client"
	KindVendor Kind = "vendor"
	KindItem   Kind = "item"
)

// IsValid checks if the kind is valid
func (k Kind) IsValid() bool {
	return k == KindClient || k == KindVendor || k == KindItem
}

// Extra are the attributes a newly created entity receives. They are
// ignored when an existing entity matches.
type Extra struct {
	Contact   partner.Contact // clients and vendors
	Service   string          // vendors
	ItemType  valueobject.TransactionType
	Nature    valueobject.Nature
	UnitPrice *decimal.Decimal
}

// Resolution is the outcome of a resolve call
type Resolution struct {
	Kind    Kind      `json:"kind"`
	ID      uuid.UUID `json:"id"`
	Name    string    `json:"name"`
	Created bool      `json:"created"`
}

// Recorder receives resolution outcomes
type Recorder interface {
	RecordResolution(ctx context.Context, kind string, created bool)
}

// Service implements find-or-create. Names match after trimming and
// Unicode case folding; the first stored spelling wins.
type Service struct {
	clients partner.ClientRepository
	vendors partner.VendorRepository
	items   catalog.ItemRepository
	locker  shared.OwnerLocker
	logger  *zap.Logger

	eventPublisher shared.EventPublisher
	recorder       Recorder
}

// NewService creates a resolver
func NewService(
	clients partner.ClientRepository,
	vendors partner.VendorRepository,
	items catalog.ItemRepository,
	locker shared.OwnerLocker,
	logger *zap.Logger,
) *Service {
	return &Service{
		clients: clients,
		vendors: vendors,
		items:   items,
		locker:  locker,
		logger:  logger,
	}
}

// SetEventPublisher sets the publisher for created-entity events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// SetRecorder sets the resolution metrics recorder
func (s *Service) SetRecorder(recorder Recorder) {
	s.recorder = recorder
}

// ResolveClient returns the client named name, creating it when needed
func (s *Service) ResolveClient(ctx context.Context, ownerID uuid.UUID, name string) (*Resolution, error) {
	return s.Resolve(ctx, KindClient, ownerID, name, Extra{})
}

// ResolveVendor returns the vendor named name, creating it when needed
func (s *Service) ResolveVendor(ctx context.Context, ownerID uuid.UUID, name string) (*Resolution, error) {
	return s.Resolve(ctx, KindVendor, ownerID, name, Extra{})
}

// ResolveItem returns the item matching (name, itemType), creating it with
// nature and unitPrice when needed
func (s *Service) ResolveItem(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
	itemType valueobject.TransactionType,
	nature valueobject.Nature,
	unitPrice *decimal.Decimal,
) (*Resolution, error) {
	return s.Resolve(ctx, KindItem, ownerID, name, Extra{ItemType: itemType, Nature: nature, UnitPrice: unitPrice})
}

// Resolve looks up kind by name and creates it when absent. Concurrent
// calls for the same new name create exactly one entity: creation runs
// under the owner lock for kind, and a unique violation from a writer in
// another process is read back as a match.
func (s *Service) Resolve(ctx context.Context, kind Kind, ownerID uuid.UUID, name string, extra Extra) (res *Resolution, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "resolver", "resolve_"+string(kind),
		telemetry.SpanAttrOwnerID, ownerID,
		telemetry.SpanAttrEntityKind, string(kind),
	)
	defer func() { telemetry.End(span, err) }()

	if !kind.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid entity kind: %s", kind))
	}
	clean := valueobject.CleanName(name)
	if clean == "" {
		return nil, shared.NewValidationError(fmt.Sprintf("%s name cannot be empty", kindLabel(kind)))
	}
	if kind == KindItem && !extra.ItemType.IsValid() {
		return nil, shared.NewValidationError(fmt.Sprintf("Invalid item type: %s", extra.ItemType))
	}
	key := valueobject.NameKey(clean)

	if res, err := s.lookup(ctx, kind, ownerID, key, extra.ItemType); err != nil || res != nil {
		return s.finish(ctx, res, err)
	}

	unlock, err := s.locker.Lock(ctx, ownerID, "resolve:"+string(kind))
	if err != nil {
		return nil, fmt.Errorf("failed to lock %s resolution: %w", kind, err)
	}
	defer unlock()

	// another caller may have created it while we waited
	if res, err := s.lookup(ctx, kind, ownerID, key, extra.ItemType); err != nil || res != nil {
		return s.finish(ctx, res, err)
	}

	res, err = s.create(ctx, kind, ownerID, clean, extra)
	if errors.Is(err, shared.ErrAlreadyExists) {
		logger.Or(ctx, s.logger).Debug("Concurrent create detected, reading back",
			zap.String("kind", string(kind)),
			zap.String("name", clean),
		)
		res, err = s.lookup(ctx, kind, ownerID, key, extra.ItemType)
		if err == nil && res == nil {
			err = fmt.Errorf("%s %q vanished after a duplicate insert", kind, clean)
		}
	}
	return s.finish(ctx, res, err)
}

func (s *Service) finish(ctx context.Context, res *Resolution, err error) (*Resolution, error) {
	if err != nil {
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordResolution(ctx, string(res.Kind), res.Created)
	}
	if res.Created {
		logger.Or(ctx, s.logger).Info("Entity created by resolver",
			zap.String("kind", string(res.Kind)),
			zap.String("id", res.ID.String()),
			zap.String("name", res.Name),
		)
	}
	return res, nil
}

// lookup returns nil, nil when nothing matches
func (s *Service) lookup(ctx context.Context, kind Kind, ownerID uuid.UUID, key string, itemType valueobject.TransactionType) (*Resolution, error) {
	var (
		id   uuid.UUID
		name string
		err  error
	)
	switch kind {
	case KindClient:
		var c *partner.Client
		if c, err = s.clients.FindByNameKey(ctx, ownerID, key); err == nil {
			id, name = c.ID, c.Name
		}
	case KindVendor:
		var v *partner.Vendor
		if v, err = s.vendors.FindByNameKey(ctx, ownerID, key); err == nil {
			id, name = v.ID, v.Name
		}
	case KindItem:
		var it *catalog.Item
		if it, err = s.items.FindByNameKey(ctx, ownerID, key, itemType); err == nil {
			id, name = it.ID, it.Name
		}
	}
	if errors.Is(err, shared.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up %s: %w", kind, err)
	}
	return &Resolution{Kind: kind, ID: id, Name: name}, nil
}

func (s *Service) create(ctx context.Context, kind Kind, ownerID uuid.UUID, name string, extra Extra) (*Resolution, error) {
	var agg shared.AggregateRoot
	switch kind {
	case KindClient:
		c, err := partner.NewClient(ownerID, name, extra.Contact)
		if err != nil {
			return nil, err
		}
		if err := s.clients.Save(ctx, c); err != nil {
			return nil, err
		}
		agg = c
	case KindVendor:
		v, err := partner.NewVendor(ownerID, name, extra.Service, extra.Contact)
		if err != nil {
			return nil, err
		}
		if err := s.vendors.Save(ctx, v); err != nil {
			return nil, err
		}
		agg = v
	case KindItem:
		it, err := catalog.NewItem(ownerID, name, catalog.ItemAttributes{
			Type:      extra.ItemType,
			Nature:    extra.Nature,
			UnitPrice: extra.UnitPrice,
		})
		if err != nil {
			return nil, err
		}
		if err := s.items.Save(ctx, it); err != nil {
			return nil, err
		}
		agg = it
	}
	event.Dispatch(ctx, s.eventPublisher, s.logger, agg)
	return &Resolution{Kind: kind, ID: agg.GetID(), Name: name, Created: true}, nil
}

func kindLabel(kind Kind) string {
	switch kind {
	case KindClient:
		return "Client"
	case KindVendor:
		return "Vendor"
	default:
		return "Item"
	}
}
