// Package partner manages clients and vendors.
package partner

import (
	"context"
	"errors"

	"github.com/evardgh/apdatebookkeeping-REAL/internal/application/event"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/partner"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ClientService handles client CRUD. Implicit creation by name goes
// through the resolver instead.
type ClientService struct {
	clientRepo     partner.ClientRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository, logger *zap.Logger) *ClientService {
	return &ClientService{clientRepo: clientRepo, logger: logger}
}

// SetEventPublisher sets the event publisher
func (s *ClientService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a client. A name that already exists fails with ALREADY_EXISTS.
func (s *ClientService) Create(ctx context.Context, ownerID uuid.UUID, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(ownerID, req.Name, partner.Contact{Email: req.Email, Phone: req.Phone})
	if err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, duplicateName(err, "Client", client.Name)
	}
	event.Dispatch(ctx, s.eventPublisher, s.logger, client)

	response := ToClientResponse(client)
	return &response, nil
}

// GetByID retrieves a client
func (s *ClientService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	response := ToClientResponse(client)
	return &response, nil
}

// List retrieves clients with search and pagination
func (s *ClientService) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]ClientResponse, int64, error) {
	domainFilter := toDomainFilter(filter, "name", "asc")
	clients, err := s.clientRepo.FindAll(ctx, ownerID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.clientRepo.Count(ctx, ownerID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToClientResponses(clients), total, nil
}

// Update updates a client
func (s *ClientService) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	name := client.Name
	if req.Name != nil {
		name = *req.Name
	}
	contact := client.Contact
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if err := client.Update(name, contact); err != nil {
		return nil, err
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, duplicateName(err, "Client", client.Name)
	}

	response := ToClientResponse(client)
	return &response, nil
}

// Delete deletes a client. Transactions and quotations keep their
// reference to it.
func (s *ClientService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.clientRepo.FindByID(ctx, ownerID, id); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, ownerID, id)
}

// VendorService handles vendor CRUD
type VendorService struct {
	vendorRepo     partner.VendorRepository
	eventPublisher shared.EventPublisher
	logger         *zap.Logger
}

// NewVendorService creates a new VendorService
func NewVendorService(vendorRepo partner.VendorRepository, logger *zap.Logger) *VendorService {
	return &VendorService{vendorRepo: vendorRepo, logger: logger}
}

// SetEventPublisher sets the event publisher
func (s *VendorService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Create creates a vendor
func (s *VendorService) Create(ctx context.Context, ownerID uuid.UUID, req CreateVendorRequest) (*VendorResponse, error) {
	vendor, err := partner.NewVendor(ownerID, req.Name, req.Service, partner.Contact{Email: req.Email, Phone: req.Phone})
	if err != nil {
		return nil, err
	}
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, duplicateName(err, "Vendor", vendor.Name)
	}
	event.Dispatch(ctx, s.eventPublisher, s.logger, vendor)

	response := ToVendorResponse(vendor)
	return &response, nil
}

// GetByID retrieves a vendor
func (s *VendorService) GetByID(ctx context.Context, ownerID, id uuid.UUID) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	response := ToVendorResponse(vendor)
	return &response, nil
}

// List retrieves vendors with search and pagination
func (s *VendorService) List(ctx context.Context, ownerID uuid.UUID, filter ListFilter) ([]VendorResponse, int64, error) {
	domainFilter := toDomainFilter(filter, "name", "asc")
	vendors, err := s.vendorRepo.FindAll(ctx, ownerID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.vendorRepo.Count(ctx, ownerID, domainFilter)
	if err != nil {
		return nil, 0, err
	}
	return ToVendorResponses(vendors), total, nil
}

// Update updates a vendor
func (s *VendorService) Update(ctx context.Context, ownerID, id uuid.UUID, req UpdateVendorRequest) (*VendorResponse, error) {
	vendor, err := s.vendorRepo.FindByID(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	name, service, contact := vendor.Name, vendor.Service, vendor.Contact
	if req.Name != nil {
		name = *req.Name
	}
	if req.Service != nil {
		service = *req.Service
	}
	if req.Email != nil {
		contact.Email = *req.Email
	}
	if req.Phone != nil {
		contact.Phone = *req.Phone
	}
	if err := vendor.Update(name, service, contact); err != nil {
		return nil, err
	}
	if err := s.vendorRepo.Save(ctx, vendor); err != nil {
		return nil, duplicateName(err, "Vendor", vendor.Name)
	}

	response := ToVendorResponse(vendor)
	return &response, nil
}

// Delete deletes a vendor
func (s *VendorService) Delete(ctx context.Context, ownerID, id uuid.UUID) error {
	if _, err := s.vendorRepo.FindByID(ctx, ownerID, id); err != nil {
		return err
	}
	return s.vendorRepo.Delete(ctx, ownerID, id)
}

func duplicateName(err error, kind, name string) error {
	if errors.Is(err, shared.ErrAlreadyExists) {
		return shared.NewDomainError(shared.CodeAlreadyExists, kind+" \""+name+"\" already exists")
	}
	return err
}

func toDomainFilter(f ListFilter, defaultOrder, defaultDir string) shared.Filter {
	out := shared.Filter{
		Page:     f.Page,
		PageSize: f.PageSize,
		OrderBy:  f.OrderBy,
		OrderDir: f.OrderDir,
		Search:   f.Search,
	}
	if out.OrderBy == "" {
		out.OrderBy = defaultOrder
	}
	if out.OrderDir == "" {
		out.OrderDir = defaultDir
	}
	return out.Normalize()
}
