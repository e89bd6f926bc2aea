package seed

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"

	"github.com/tbourn/go-gift-registry/internal/config"
	"github.com/tbourn/go-gift-registry/internal/domain"
)

// Kind names a record batch in a Graph and in a Report.
type Kind string

const (
	KindUser         Kind = "users"
	KindEvent        Kind = "events"
	KindCategory     Kind = "categories"
	KindGiftlist     Kind = "giftlists"
	KindDefaultGift  Kind = "default_gifts"
	KindDerivedGift  Kind = "derived_gifts"
	KindWishlist     Kind = "wishlists"
	KindWishlistGift Kind = "wishlist_gifts"
)

// maxNameDraws bounds how many random category names are tried before a
// numeric suffix is used to make the name unique within the pass.
const maxNameDraws = 10

var (
	// ErrNoUsers is returned when no user survives validation, so no
	// event can be owned.
	ErrNoUsers = errors.New("seed: no valid user to own the event")

	// ErrNoEvent is returned when the event is rejected; every later
	// stage references it.
	ErrNoEvent = errors.New("seed: event rejected")
)

// Counts are the number of records each stage produces.
type Counts struct {
	Users                   int `json:"users"`
	Categories              int `json:"categories"`
	GiftlistsPerCategory    int `json:"giftlists_per_category"`
	DefaultGiftsPerGiftlist int `json:"default_gifts_per_giftlist"`
	DerivedGifts            int `json:"derived_gifts"`
	WishlistGifts           int `json:"wishlist_gifts"`
}

// DefaultCounts is the standard sample: 2 users, 5 categories with 5
// giftlists of 15 default gifts each, 180 derived gifts, 10 wishlist gifts.
func DefaultCounts() Counts {
	return Counts{
		Users:                   2,
		Categories:              5,
		GiftlistsPerCategory:    5,
		DefaultGiftsPerGiftlist: 15,
		DerivedGifts:            180,
		WishlistGifts:           10,
	}
}

// CountsFrom copies the generator counts out of the seed configuration.
func CountsFrom(c config.SeedConfig) Counts {
	return Counts{
		Users:                   c.Users,
		Categories:              c.Categories,
		GiftlistsPerCategory:    c.GiftlistsPerCategory,
		DefaultGiftsPerGiftlist: c.DefaultGiftsPerGiftlist,
		DerivedGifts:            c.DerivedGifts,
		WishlistGifts:           c.WishlistGifts,
	}
}

// Graph is the output of one pass, one batch per kind. Categories holds only
// the categories created by the pass; reused ones are already stored.
type Graph struct {
	Users         []domain.User
	Events        []domain.Event
	Categories    []domain.Category
	Giftlists     []domain.Giftlist
	DefaultGifts  []domain.Gift
	DerivedGifts  []domain.Gift
	Wishlists     []domain.Wishlist
	WishlistGifts []domain.WishlistGift
}

// Gifts returns default gifts followed by derived gifts.
func (g *Graph) Gifts() []domain.Gift {
	out := make([]domain.Gift, 0, len(g.DefaultGifts)+len(g.DerivedGifts))
	out = append(out, g.DefaultGifts...)
	return append(out, g.DerivedGifts...)
}

// Report summarizes a pass per kind.
type Report struct {
	Accepted         map[Kind]int `json:"accepted"`
	Dropped          map[Kind]int `json:"dropped"`
	Inserted         map[Kind]int `json:"inserted"`
	ReusedCategories int          `json:"reused_categories"`
}

func newReport() *Report {
	return &Report{
		Accepted: make(map[Kind]int),
		Dropped:  make(map[Kind]int),
		Inserted: make(map[Kind]int),
	}
}

func sum(m map[Kind]int) int {
	n := 0
	for _, v := range m {
		n += v
	}
	return n
}

// Generator builds sample graphs. It is sequential: a Generator must not
// run two passes at once because the Faker is shared.
type Generator struct {
	Faker    *gofakeit.Faker
	Counts   Counts
	Validate *validator.Validate
	// Strict fails the pass on the first invalid record instead of
	// dropping it.
	Strict bool
	Log    zerolog.Logger
	Now    func() time.Time
}

// NewGenerator returns a Generator configured from cfg. A zero RandomSeed
// draws a random seed.
func NewGenerator(cfg config.SeedConfig) *Generator {
	return &Generator{
		Faker:    gofakeit.New(cfg.RandomSeed),
		Counts:   CountsFrom(cfg),
		Validate: domain.NewValidator(),
		Strict:   cfg.Strict,
		Log:      log.Logger,
		Now:      time.Now,
	}
}

// Stage is one named step of a pass. A stage reads only what earlier
// stages produced.
type Stage struct {
	Name string
	run  func(*pass) error
}

// Stages returns the pass in dependency order.
func (g *Generator) Stages() []Stage {
	return []Stage{
		{Name: "fetch_categories", run: (*pass).loadCategories},
		{Name: "users", run: (*pass).genUsers},
		{Name: "event", run: (*pass).genEvent},
		{Name: "catalog", run: (*pass).genCatalog},
		{Name: "derived_gifts", run: (*pass).genDerived},
		{Name: "wishlist", run: (*pass).genWishlist},
		{Name: "wishlist_gifts", run: (*pass).genWishlistGifts},
	}
}

// Generate runs every stage over the categories already in the store. On
// error the partial graph and report are returned alongside it.
func (g *Generator) Generate(existing []domain.Category) (*Graph, *Report, error) {
	p := g.newPass(existing)
	for _, st := range g.Stages() {
		acc, drop := sum(p.report.Accepted), sum(p.report.Dropped)
		if err := st.run(p); err != nil {
			p.graph.Categories = p.categories.Created()
			return p.graph, p.report, fmt.Errorf("seed: stage %s: %w", st.Name, err)
		}
		g.Log.Debug().
			Str("stage", st.Name).
			Int("accepted", sum(p.report.Accepted)-acc).
			Int("dropped", sum(p.report.Dropped)-drop).
			Msg("seed stage done")
	}
	p.graph.Categories = p.categories.Created()
	return p.graph, p.report, nil
}

func (g *Generator) newPass(existing []domain.Category) *pass {
	if g.Validate == nil {
		g.Validate = domain.NewValidator()
	}
	if g.Now == nil {
		g.Now = time.Now
	}
	return &pass{
		g:          g,
		f:          g.Faker,
		existing:   existing,
		categories: NewPool[domain.Category](domain.CategoryKey),
		used:       make(map[string]bool),
		graph:      &Graph{},
		report:     newReport(),
	}
}

// pass holds the state of one Generate call.
type pass struct {
	g          *Generator
	f          *gofakeit.Faker
	existing   []domain.Category
	categories *Pool[domain.Category]
	used       map[string]bool // category keys drawn in this pass
	event      *domain.Event
	graph      *Graph
	report     *Report
}

// accept validates rec. Invalid records are counted as dropped, or fail the
// pass when the generator is strict.
func (p *pass) accept(kind Kind, rec any) (bool, error) {
	if err := domain.ValidateWith(p.g.Validate, rec); err != nil {
		return p.drop(kind, err)
	}
	p.report.Accepted[kind]++
	return true, nil
}

func (p *pass) drop(kind Kind, err error) (bool, error) {
	if p.g.Strict {
		return false, fmt.Errorf("%s: %w", kind, err)
	}
	p.report.Dropped[kind]++
	p.g.Log.Warn().Err(err).Str("kind", string(kind)).Msg("seed: dropped invalid record")
	return false, nil
}

func (p *pass) loadCategories() error {
	for _, c := range p.existing {
		p.categories.Seed(c.Name, c)
	}
	return nil
}

func (p *pass) genUsers() error {
	for i := 0; i < p.g.Counts.Users; i++ {
		u := p.newUser()
		ok, err := p.accept(KindUser, &u)
		if err != nil {
			return err
		}
		if ok {
			p.graph.Users = append(p.graph.Users, u)
		}
	}
	return nil
}

func (p *pass) genEvent() error {
	users := p.graph.Users
	if len(users) == 0 {
		return ErrNoUsers
	}
	now := p.g.Now()
	date := p.f.DateRange(now.AddDate(0, 1, 0), now.AddDate(2, 0, 0))
	draft := domain.Event{
		Name:          strings.TrimSuffix(p.f.Sentence(6), "."),
		Date:          &date,
		Location:      p.f.City(),
		URL:           p.f.URL(),
		Country:       p.f.Country(),
		EventType:     domain.DefaultEventType,
		PrimaryUserID: domain.Ref(users[0].ID),
	}
	if len(users) > 1 {
		draft.SecondaryUserID = domain.Ref(users[1].ID)
	}
	ev, err := domain.NewEvent(draft)
	if err != nil {
		return err
	}
	ok, err := p.accept(KindEvent, ev)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNoEvent
	}
	p.event = ev
	p.graph.Events = append(p.graph.Events, *ev)
	return nil
}

// genCatalog obtains each category through the pool, then its giftlists and
// their default gifts. Giftlist totals reflect the accepted default gifts.
func (p *pass) genCatalog() error {
	c := p.g.Counts
	for i := 0; i < c.Categories; i++ {
		cat, created, err := p.drawCategory()
		if errors.Is(err, errDropped) {
			continue
		}
		if err != nil {
			return err
		}
		if !created {
			p.report.ReusedCategories++
		}

		for j := 0; j < c.GiftlistsPerCategory; j++ {
			gl := domain.Giftlist{
				ID:          uuid.NewString(),
				Name:        p.f.ProductName(),
				Description: p.f.ProductDescription(),
				TotalPrice:  decimal.Zero,
				IsDefault:   p.f.Bool(),
				CategoryID:  domain.Ref(cat.ID),
				EventID:     p.event.ID,
			}
			ok, err := p.accept(KindGiftlist, &gl)
			if err != nil {
				return err
			}
			if !ok {
				continue
			}

			for k := 0; k < c.DefaultGiftsPerGiftlist; k++ {
				g := p.newGift(true)
				g.CategoryID = domain.Ref(cat.ID)
				g.EventID = domain.Ref(p.event.ID)
				g.GiftlistID = domain.Ref(gl.ID)
				ok, err := p.accept(KindDefaultGift, &g)
				if err != nil {
					return err
				}
				if !ok {
					continue
				}
				gl.TotalGifts++
				gl.TotalPrice = gl.TotalPrice.Add(g.Price)
				p.graph.DefaultGifts = append(p.graph.DefaultGifts, g)
			}
			p.graph.Giftlists = append(p.graph.Giftlists, gl)
		}
	}
	return nil
}

var errDropped = errors.New("seed: record dropped")

// drawCategory picks a category name not yet used in this pass and resolves
// it through the pool. A fetched category with that key is reused.
func (p *pass) drawCategory() (domain.Category, bool, error) {
	name := ""
	for try := 0; try < maxNameDraws; try++ {
		cand := strings.TrimSpace(p.f.ProductCategory())
		if cand != "" && !p.used[domain.CategoryKey(cand)] {
			name = cand
			break
		}
	}
	if name == "" {
		base := strings.TrimSpace(p.f.ProductCategory())
		for n := 2; ; n++ {
			cand := fmt.Sprintf("%s %d", base, n)
			if !p.used[domain.CategoryKey(cand)] {
				name = cand
				break
			}
		}
	}
	p.used[domain.CategoryKey(name)] = true

	return p.categories.GetOrCreate(name, func() (domain.Category, error) {
		c, err := domain.NewCategory(name)
		if err != nil {
			if _, err := p.drop(KindCategory, err); err != nil {
				return domain.Category{}, err
			}
			return domain.Category{}, errDropped
		}
		ok, err := p.accept(KindCategory, c)
		if err != nil {
			return domain.Category{}, err
		}
		if !ok {
			return domain.Category{}, errDropped
		}
		return *c, nil
	})
}

// genDerived creates gifts copied from uniformly random default gifts,
// filed under a uniformly random pool category and no giftlist.
func (p *pass) genDerived() error {
	n := p.g.Counts.DerivedGifts
	defaults := p.graph.DefaultGifts
	if n == 0 {
		return nil
	}
	if len(defaults) == 0 {
		p.g.Log.Warn().Int("requested", n).Msg("seed: no default gifts to derive from")
		return nil
	}
	cats := p.categories.Values()
	for i := 0; i < n; i++ {
		src := defaults[p.f.Number(0, len(defaults)-1)]
		g := p.newGift(false)
		g.Name = src.Name
		g.Description = src.Description
		g.Price = src.Price
		g.SourceGiftID = domain.Ref(src.ID)
		g.EventID = domain.Ref(p.event.ID)
		if len(cats) > 0 {
			g.CategoryID = domain.Ref(cats[p.f.Number(0, len(cats)-1)].ID)
		}
		ok, err := p.accept(KindDerivedGift, &g)
		if err != nil {
			return err
		}
		if ok {
			p.graph.DerivedGifts = append(p.graph.DerivedGifts, g)
		}
	}
	return nil
}

func (p *pass) genWishlist() error {
	w := domain.Wishlist{
		ID:          uuid.NewString(),
		Description: strings.TrimSuffix(p.f.Sentence(8), "."),
		TotalPrice:  decimal.Zero,
		EventID:     p.event.ID,
	}
	ok, err := p.accept(KindWishlist, &w)
	if err != nil {
		return err
	}
	if ok {
		p.graph.Wishlists = append(p.graph.Wishlists, w)
	}
	return nil
}

// genWishlistGifts links distinct random gifts (derived ones, or default
// ones when none were derived) to the wishlist and sets its totals.
func (p *pass) genWishlistGifts() error {
	if len(p.graph.Wishlists) == 0 || p.g.Counts.WishlistGifts == 0 {
		return nil
	}
	wl := &p.graph.Wishlists[0]
	candidates := p.graph.DerivedGifts
	if len(candidates) == 0 {
		candidates = p.graph.DefaultGifts
	}
	n := min(p.g.Counts.WishlistGifts, len(candidates))
	for _, idx := range p.shuffle(len(candidates))[:n] {
		gift := candidates[idx]
		link := domain.WishlistGift{
			ID:         uuid.NewString(),
			WishlistID: wl.ID,
			GiftID:     gift.ID,
			EventID:    p.event.ID,
		}
		ok, err := p.accept(KindWishlistGift, &link)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		wl.TotalGifts++
		wl.TotalPrice = wl.TotalPrice.Add(gift.Price)
		p.graph.WishlistGifts = append(p.graph.WishlistGifts, link)
	}
	return nil
}

func (p *pass) newUser() domain.User {
	id := uuid.NewString()
	first, last := p.f.FirstName(), p.f.LastName()
	now := p.g.Now()
	verified := p.f.DateRange(now.AddDate(-1, 0, 0), now)
	return domain.User{
		ID:               id,
		Name:             first,
		LastName:         last,
		Email:            emailFor(id, p.f.DomainName(), first, last),
		Password:         p.f.Password(true, true, true, false, false, 16),
		EmailVerified:    &verified,
		Image:            "https://i.pravatar.cc/300?u=" + id,
		Role:             domain.RoleCouple,
		IsOnboarded:      p.f.Bool(),
		HasPybankAccount: p.f.Bool(),
		OnboardingStep:   "1",
	}
}

func (p *pass) newGift(isDefault bool) domain.Gift {
	id := uuid.NewString()
	return domain.Gift{
		ID:          id,
		Name:        p.f.ProductName(),
		Description: p.f.ProductDescription(),
		Price:       decimal.NewFromFloat(p.f.Price(1, 1000)).Round(2),
		ImageURL:    "https://picsum.photos/seed/" + id + "/640/480",
		IsDefault:   isDefault,
	}
}

// shuffle returns a Fisher-Yates permutation of [0, n) drawn from the Faker.
func (p *pass) shuffle(n int) []int {
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	for i := n - 1; i > 0; i-- {
		j := p.f.Number(0, i)
		idx[i], idx[j] = idx[j], idx[i]
	}
	return idx
}

// emailFor builds a unique address; the ID fragment keeps repeated passes
// with the same random seed from colliding on the unique email index.
func emailFor(id, domainName string, names ...string) string {
	parts := make([]string, 0, len(names)+1)
	for _, n := range names {
		if s := slug(n); s != "" {
			parts = append(parts, s)
		}
	}
	parts = append(parts, id[:8])
	return strings.Join(parts, ".") + "@" + strings.ToLower(domainName)
}

func slug(s string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			return r
		case r >= 'A' && r <= 'Z':
			return r + ('a' - 'A')
		default:
			return -1
		}
	}, s)
}
