package domain

import (
	"errors"
	"strings"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"gorm.io/gorm"
)

var (
	// ErrEventWithoutUser is returned when an event references neither a
	// primary nor a secondary user.
	ErrEventWithoutUser = errors.New("event requires a primary or secondary user")

	// ErrGiftSelfReference is returned when a gift names itself as source.
	ErrGiftSelfReference = errors.New("gift cannot be its own source gift")

	// ErrGiftSourceCycle is returned when following source gifts from a
	// gift's source leads back to the gift.
	ErrGiftSourceCycle = errors.New("source gift chain forms a cycle")

	// ErrEmptyCategoryName is returned when a category name folds to nothing.
	ErrEmptyCategoryName = errors.New("category name must not be blank")
)

var folder = cases.Fold()

// CategoryKey returns the natural key of a category name: trimmed, inner
// whitespace collapsed to single spaces and case-folded. "Home  Decor" and
// " home decor" share a key.
func CategoryKey(name string) string {
	return folder.String(strings.Join(strings.Fields(name), " "))
}

// NewEvent normalizes e (blank user IDs become nil, a missing ID is
// generated, the event type defaults to WEDDING) and enforces that at least
// one owning user is set.
func NewEvent(e Event) (*Event, error) {
	e.PrimaryUserID = normalizeRef(e.PrimaryUserID)
	e.SecondaryUserID = normalizeRef(e.SecondaryUserID)
	if err := e.Check(); err != nil {
		return nil, err
	}
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	if strings.TrimSpace(e.EventType) == "" {
		e.EventType = DefaultEventType
	}
	return &e, nil
}

// Check enforces the owner invariant.
func (e *Event) Check() error {
	if normalizeRef(e.PrimaryUserID) == nil && normalizeRef(e.SecondaryUserID) == nil {
		return ErrEventWithoutUser
	}
	return nil
}

// BeforeSave rejects ownerless events on every write path.
func (e *Event) BeforeSave(*gorm.DB) error {
	e.PrimaryUserID = normalizeRef(e.PrimaryUserID)
	e.SecondaryUserID = normalizeRef(e.SecondaryUserID)
	if strings.TrimSpace(e.EventType) == "" {
		e.EventType = DefaultEventType
	}
	return e.Check()
}

// NewCategory returns a category with a fresh ID and its natural key set.
func NewCategory(name string) (*Category, error) {
	c := &Category{ID: uuid.NewString(), Name: strings.TrimSpace(name)}
	if err := c.Check(); err != nil {
		return nil, err
	}
	c.NameKey = CategoryKey(c.Name)
	return c, nil
}

// Check rejects names that fold to an empty key.
func (c *Category) Check() error {
	if CategoryKey(c.Name) == "" {
		return ErrEmptyCategoryName
	}
	return nil
}

// BeforeSave keeps NameKey in sync with Name.
func (c *Category) BeforeSave(*gorm.DB) error {
	c.Name = strings.TrimSpace(c.Name)
	if err := c.Check(); err != nil {
		return err
	}
	c.NameKey = CategoryKey(c.Name)
	return nil
}

// Check rejects gifts whose source is themselves.
func (g *Gift) Check() error {
	if g.SourceGiftID != nil && *g.SourceGiftID == g.ID {
		return ErrGiftSelfReference
	}
	return nil
}

// BeforeSave enforces Check on every write path.
func (g *Gift) BeforeSave(*gorm.DB) error {
	g.CategoryID = normalizeRef(g.CategoryID)
	g.EventID = normalizeRef(g.EventID)
	g.GiftlistID = normalizeRef(g.GiftlistID)
	g.SourceGiftID = normalizeRef(g.SourceGiftID)
	return g.Check()
}

// IsInvariant reports whether err is one of the domain invariant violations.
func IsInvariant(err error) bool {
	return errors.Is(err, ErrEventWithoutUser) ||
		errors.Is(err, ErrGiftSelfReference) ||
		errors.Is(err, ErrGiftSourceCycle) ||
		errors.Is(err, ErrEmptyCategoryName)
}

// Ref returns a pointer to s, or nil when s is blank.
func Ref(s string) *string {
	return normalizeRef(&s)
}

func normalizeRef(p *string) *string {
	if p == nil {
		return nil
	}
	s := strings.TrimSpace(*p)
	if s == "" {
		return nil
	}
	return &s
}
