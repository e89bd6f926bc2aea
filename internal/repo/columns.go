package repo

import "github.com/tbourn/go-gift-registry/internal/query"

// Filterable fields per listing. Keys are the public query names used by the
// HTTP layer; values are SQL column expressions.
var (
	GiftColumns = query.Columns{
		"id":             "id",
		"event_id":       "event_id",
		"giftlist_id":    "giftlist_id",
		"category_id":    "category_id",
		"source_gift_id": "source_gift_id",
		"is_default":     "is_default",
		"name":           "name",
		"price":          "price",
	}

	GiftlistColumns = query.Columns{
		"event_id":    "event_id",
		"category_id": "category_id",
		"is_default":  "is_default",
		"name":        "name",
	}

	EventColumns = query.Columns{
		"primary_user_id":   "primary_user_id",
		"secondary_user_id": "secondary_user_id",
		"country":           "country",
		"event_type":        "event_type",
		"name":              "name",
	}

	CategoryColumns = query.Columns{
		"name": "name",
	}

	UserColumns = query.Columns{
		"role":  "role",
		"email": "email",
		"name":  "name",
	}

	WishlistColumns = query.Columns{
		"event_id": "event_id",
	}

	// WishlistGiftColumns qualifies names for the gifts ⋈ wishlist_gifts join.
	WishlistGiftColumns = query.Columns{
		"wishlist_id": "wishlist_gifts.wishlist_id",
		"event_id":    "wishlist_gifts.event_id",
		"name":        "gifts.name",
	}
)
