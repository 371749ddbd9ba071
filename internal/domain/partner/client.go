package partner

import (
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared"
	"github.com/evardgh/apdatebookkeeping-REAL/internal/domain/shared/valueobject"
	"github.com/google/uuid"
)

// Client is a counterparty the owner bills
type Client struct {
	shared.OwnedAggregateRoot
	Name    string
	NameKey string
	Contact Contact
}

// NewClient creates a client. The name is trimmed and must not be blank.
func NewClient(ownerID uuid.UUID, name string, contact Contact) (*Client, error) {
	name, err := validateName("Client", name)
	if err != nil {
		return nil, err
	}
	contact, err = contact.Normalize()
	if err != nil {
		return nil, err
	}

	client := &Client{
		OwnedAggregateRoot: shared.NewOwnedAggregateRoot(ownerID),
		Name:               name,
		NameKey:            valueobject.NameKey(name),
		Contact:            contact,
	}
	client.AddDomainEvent(NewCounterpartyCreatedEvent(AggregateTypeClient, client.ID, ownerID, client.Name))
	return client, nil
}

// Update replaces the client's name and contact details
func (c *Client) Update(name string, contact Contact) error {
	name, err := validateName("Client", name)
	if err != nil {
		return err
	}
	contact, err = contact.Normalize()
	if err != nil {
		return err
	}
	c.Name = name
	c.NameKey = valueobject.NameKey(name)
	c.Contact = contact
	c.Touch()
	c.IncrementVersion()
	return nil
}
