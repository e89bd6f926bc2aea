// Package domain defines the persistence models for the gift registry:
// users, events, categories, giftlists, gifts, wishlists and the
// wishlist-gift association. These types are mapped with GORM and carry the
// `validate` tags consumed by Validate.
package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Role enumerates user roles.
type Role string

// RoleCouple is the only role the registry currently knows about.
const RoleCouple Role = "COUPLE"

// DefaultEventType is applied to events created without a type.
const DefaultEventType = "WEDDING"

// User is a registry account. Onboarding flags track the sign-up wizard.
//
// Fields:
//   - ID: UUID primary key (char(36)).
//   - Email: unique login address.
//   - Password: stored credential; never serialized.
//   - Role: enumerated role (COUPLE).
//   - IsOnboarded / HasPybankAccount / OnboardingStep / IsMagicLinkLogin:
//     onboarding state flags.
type User struct {
	ID               string     `json:"id"                  gorm:"type:char(36);primaryKey" validate:"required,uuid"`
	Name             string     `json:"name"                gorm:"type:varchar(255);not null" validate:"required,max=255"`
	LastName         string     `json:"last_name"           gorm:"type:varchar(255);not null" validate:"required,max=255"`
	Email            string     `json:"email"               gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email" validate:"required,email"`
	Password         string     `json:"-"                   gorm:"type:varchar(255);not null" validate:"required"`
	EmailVerified    *time.Time `json:"email_verified,omitempty"`
	Image            string     `json:"image,omitempty"     gorm:"type:text" validate:"omitempty,url"`
	Role             Role       `json:"role"                gorm:"type:varchar(16);not null;default:'COUPLE';index" validate:"required,oneof=COUPLE"`
	IsOnboarded      bool       `json:"is_onboarded"        gorm:"not null;default:false"`
	HasPybankAccount bool       `json:"has_pybank_account"  gorm:"not null;default:false"`
	OnboardingStep   string     `json:"onboarding_step"     gorm:"type:varchar(8);not null;default:'1'" validate:"required"`
	IsMagicLinkLogin bool       `json:"is_magic_link_login" gorm:"not null;default:false"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// TableName returns the database table name for User.
func (User) TableName() string { return "users" }

// Event is a celebration (wedding by default) owned by one or two users.
// At least one of PrimaryUserID / SecondaryUserID is always set; see NewEvent.
type Event struct {
	ID              string     `json:"id"                          gorm:"type:char(36);primaryKey" validate:"required,uuid"`
	Name            string     `json:"name,omitempty"              gorm:"type:varchar(255)" validate:"max=255"`
	Date            *time.Time `json:"date,omitempty"`
	Location        string     `json:"location,omitempty"          gorm:"type:varchar(255)" validate:"max=255"`
	URL             string     `json:"url"                         gorm:"type:varchar(255);not null" validate:"required,url,max=255"`
	Country         string     `json:"country,omitempty"           gorm:"type:varchar(128);index" validate:"max=128"`
	EventType       string     `json:"event_type"                  gorm:"type:varchar(32);not null;default:'WEDDING'" validate:"required,max=32"`
	PrimaryUserID   *string    `json:"primary_user_id,omitempty"   gorm:"type:char(36);index" validate:"omitempty,uuid"`
	SecondaryUserID *string    `json:"secondary_user_id,omitempty" gorm:"type:char(36);index" validate:"omitempty,uuid"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`

	PrimaryUser   *User `json:"-" validate:"-" gorm:"foreignKey:PrimaryUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	SecondaryUser *User `json:"-" validate:"-" gorm:"foreignKey:SecondaryUserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Event.
func (Event) TableName() string { return "events" }

// Category groups gifts and giftlists. NameKey is the case-folded natural key
// (see CategoryKey) and is unique, so the store rejects duplicate names.
type Category struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey" validate:"required,uuid"`
	Name      string    `json:"name"       gorm:"type:varchar(255);not null" validate:"required,min=1,max=255"`
	NameKey   string    `json:"-"          gorm:"type:varchar(255);not null;uniqueIndex:ux_categories_name_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for Category.
func (Category) TableName() string { return "categories" }

// Giftlist is a named collection of gifts for an event, filed under a category.
type Giftlist struct {
	ID          string          `json:"id"                    gorm:"type:char(36);primaryKey" validate:"required,uuid"`
	Name        string          `json:"name"                  gorm:"type:varchar(255);not null" validate:"required,min=1,max=255"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	TotalGifts  int             `json:"total_gifts"           gorm:"not null;default:0" validate:"gte=0"`
	TotalPrice  decimal.Decimal `json:"total_price"           gorm:"type:decimal(14,2);not null;default:0" validate:"gte=0"`
	IsDefault   bool            `json:"is_default"            gorm:"not null;default:false;index"`
	CategoryID  *string         `json:"category_id,omitempty" gorm:"type:char(36);index" validate:"omitempty,uuid"`
	EventID     string          `json:"event_id"              gorm:"type:char(36);not null;index" validate:"required,uuid"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Category *Category `json:"-" validate:"-" gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Event    *Event    `json:"-" validate:"-" gorm:"foreignKey:EventID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Giftlist.
func (Giftlist) TableName() string { return "giftlists" }

// Gift is a single item. Default gifts are templates created under a
// giftlist; derived gifts point back at their template through SourceGiftID.
// Every foreign key is optional.
type Gift struct {
	ID           string          `json:"id"                       gorm:"type:char(36);primaryKey" validate:"required,uuid"`
	Name         string          `json:"name"                     gorm:"type:varchar(255);not null;index" validate:"required,min=1,max=255"`
	Description  string          `json:"description,omitempty"    gorm:"type:text"`
	Price        decimal.Decimal `json:"price"                    gorm:"type:decimal(14,2);not null;default:0;index" validate:"gte=0"`
	ImageURL     string          `json:"image_url,omitempty"      gorm:"type:text" validate:"omitempty,url"`
	IsDefault    bool            `json:"is_default"               gorm:"not null;default:false;index"`
	CategoryID   *string         `json:"category_id,omitempty"    gorm:"type:char(36);index" validate:"omitempty,uuid"`
	EventID      *string         `json:"event_id,omitempty"       gorm:"type:char(36);index" validate:"omitempty,uuid"`
	GiftlistID   *string         `json:"giftlist_id,omitempty"    gorm:"type:char(36);index" validate:"omitempty,uuid"`
	SourceGiftID *string         `json:"source_gift_id,omitempty" gorm:"type:char(36);index" validate:"omitempty,uuid"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	Category   *Category `json:"-" validate:"-" gorm:"foreignKey:CategoryID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	Event      *Event    `json:"-" validate:"-" gorm:"foreignKey:EventID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Giftlist   *Giftlist `json:"-" validate:"-" gorm:"foreignKey:GiftlistID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
	SourceGift *Gift     `json:"-" validate:"-" gorm:"foreignKey:SourceGiftID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:SET NULL"`
}

// TableName returns the database table name for Gift.
func (Gift) TableName() string { return "gifts" }

// Wishlist is the set of gifts a couple actually wants for an event.
type Wishlist struct {
	ID          string          `json:"id"                    gorm:"type:char(36);primaryKey" validate:"required,uuid"`
	Description string          `json:"description,omitempty" gorm:"type:text"`
	TotalGifts  int             `json:"total_gifts"           gorm:"not null;default:0" validate:"gte=0"`
	TotalPrice  decimal.Decimal `json:"total_price"           gorm:"type:decimal(14,2);not null;default:0" validate:"gte=0"`
	EventID     string          `json:"event_id"              gorm:"type:char(36);not null;index" validate:"required,uuid"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Event *Event `json:"-" validate:"-" gorm:"foreignKey:EventID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Wishlist.
func (Wishlist) TableName() string { return "wishlists" }

// WishlistGift joins wishlists and gifts. A gift appears at most once per
// wishlist (unique wishlist_id, gift_id).
type WishlistGift struct {
	ID         string    `json:"id"          gorm:"type:char(36);primaryKey" validate:"required,uuid"`
	WishlistID string    `json:"wishlist_id" gorm:"type:char(36);not null;uniqueIndex:ux_wishlist_gift,priority:1" validate:"required,uuid"`
	GiftID     string    `json:"gift_id"     gorm:"type:char(36);not null;uniqueIndex:ux_wishlist_gift,priority:2;index" validate:"required,uuid"`
	EventID    string    `json:"event_id"    gorm:"type:char(36);not null;index" validate:"required,uuid"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`

	Wishlist *Wishlist `json:"-" validate:"-" gorm:"foreignKey:WishlistID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Gift     *Gift     `json:"-" validate:"-" gorm:"foreignKey:GiftID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Event    *Event    `json:"-" validate:"-" gorm:"foreignKey:EventID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for WishlistGift.
func (WishlistGift) TableName() string { return "wishlist_gifts" }

// All lists every model in foreign-key dependency order, for migrations.
func All() []any {
	return []any{
		&User{},
		&Event{},
		&Category{},
		&Giftlist{},
		&Gift{},
		&Wishlist{},
		&WishlistGift{},
		&Idempotency{},
	}
}
