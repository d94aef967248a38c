package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"

	"brokerage/server/internal/models"
)

// Writer persists record batches.
type Writer interface {
	UpsertBatch(ctx context.Context, batch models.RecordBatch) error
}

// Counts sizes a generated data set.
type Counts struct {
	Properties int
	Clients    int
	Leads      int
}

const MaxRecords = 10000

func (c Counts) Validate() error {
	if c.Properties < 0 || c.Clients < 0 || c.Leads < 0 {
		return fmt.Errorf("record counts must not be negative")
	}
	if c.Properties+c.Clients+c.Leads > MaxRecords {
		return fmt.Errorf("at most %d records can be generated at once", MaxRecords)
	}
	return nil
}

var (
	neighborhoods = []string{"Moema", "Pinheiros", "Vila Mariana", "Itaim Bibi", "Tatuapé", "Santana", "Butantã", "Lapa"}
	streets       = []string{"Rua Augusta", "Av. Paulista", "Rua Oscar Freire", "Rua Haddock Lobo", "Av. Rebouças", "Rua da Consolação"}
	propertyTypes = []string{"apartment", "house", "studio", "penthouse", "commercial"}
	statuses      = []string{"available", "available", "available", "sold", "sold", "reserved", "rented"}
	leadStatuses  = []string{"new", "new", "contacted", "qualified", "converted", "lost", "closed"}
	firstNames    = []string{"Ana", "Bruno", "Carla", "Diego", "Elisa", "Felipe", "Gabriela", "Hugo", "Isabela", "João"}
	lastNames     = []string{"Silva", "Souza", "Oliveira", "Santos", "Lima", "Costa", "Pereira", "Almeida"}
)

// Generator produces deterministic demo records for a given seed.
type Generator struct {
	rnd  *rand.Rand
	base time.Time
	ids  *rand.Rand
}

// NewGenerator anchors generated timestamps on base, usually the current time.
func NewGenerator(seed int64, base time.Time) *Generator {
	return &Generator{
		rnd:  rand.New(rand.NewSource(seed)),
		ids:  rand.New(rand.NewSource(seed ^ 0x5eed)),
		base: base.UTC(),
	}
}

func (g *Generator) id() string {
	id, err := uuid.NewRandomFromReader(g.ids)
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func (g *Generator) pick(values []string) string {
	return values[g.rnd.Intn(len(values))]
}

func (g *Generator) daysAgo(maxDays int) time.Time {
	return g.base.Add(-time.Duration(g.rnd.Intn(maxDays*24)) * time.Hour)
}

func strPtr(s string) *string {
	return &s
}

func (g *Generator) Property() models.PropertyRecord {
	bedrooms := 1 + g.rnd.Intn(5)
	bathrooms := 1 + g.rnd.Intn(bedrooms)
	area := float64(35+g.rnd.Intn(300)) + float64(g.rnd.Intn(10))/10
	price := 150000 + area*float64(6000+g.rnd.Intn(9000))
	status := g.pick(statuses)
	created := g.daysAgo(365)

	lat := -23.5505 + (g.rnd.Float64()-0.5)*0.2
	lng := -46.6333 + (g.rnd.Float64()-0.5)*0.2
	address := fmt.Sprintf(`{"street":%q,"number":%d,"neighborhood":%q,"city":"São Paulo","state":"SP"}`,
		g.pick(streets), 10+g.rnd.Intn(2000), g.pick(neighborhoods))

	r := models.PropertyRecord{
		ID:           g.id(),
		Title:        strPtr(fmt.Sprintf("%s %d quartos em %s", g.pick(propertyTypes), bedrooms, g.pick(neighborhoods))),
		Price:        strPtr(fmt.Sprintf("%.2f", price)),
		Status:       strPtr(status),
		PropertyType: strPtr(g.pick(propertyTypes)),
		Bedrooms:     &bedrooms,
		Bathrooms:    &bathrooms,
		Area:         &area,
		Address:      &address,
		Latitude:     &lat,
		Longitude:    &lng,
		CreatedAt:    &created,
	}
	if status == "sold" || status == "reserved" {
		updated := created.Add(time.Duration(5+g.rnd.Intn(120)) * 24 * time.Hour)
		if updated.After(g.base) {
			updated = g.base
		}
		r.UpdatedAt = &updated
	}
	return r
}

func (g *Generator) name() string {
	return g.pick(firstNames) + " " + g.pick(lastNames)
}

func (g *Generator) Client() models.ClientRecord {
	name := g.name()
	owner := g.rnd.Intn(4) == 0
	status := "active"
	if g.rnd.Intn(5) == 0 {
		status = "inactive"
	}
	created := g.daysAgo(720)
	return models.ClientRecord{
		ID:        g.id(),
		Name:      &name,
		Email:     strPtr(fmt.Sprintf("cliente%d@example.com", g.rnd.Intn(1_000_000))),
		Phone:     strPtr(fmt.Sprintf("+55 11 9%04d-%04d", g.rnd.Intn(10000), g.rnd.Intn(10000))),
		Status:    &status,
		IsOwner:   &owner,
		CreatedAt: &created,
	}
}

func (g *Generator) Lead() models.LeadRecord {
	name := g.name()
	created := g.daysAgo(180)
	budgetMin := 200000 + g.rnd.Intn(20)*50000
	budgetMax := budgetMin + (1+g.rnd.Intn(10))*50000

	r := models.LeadRecord{
		ID:        g.id(),
		Name:      &name,
		Email:     strPtr(fmt.Sprintf("lead%d@example.com", g.rnd.Intn(1_000_000))),
		Status:    strPtr(g.pick(leadStatuses)),
		BudgetMin: strPtr(fmt.Sprintf("%d", budgetMin)),
		BudgetMax: strPtr(fmt.Sprintf("%d", budgetMax)),
		CreatedAt: &created,
	}
	// Some leads have not been scored yet.
	if g.rnd.Intn(6) != 0 {
		r.MLScore = strPtr(fmt.Sprintf("%.1f", g.rnd.Float64()*100))
	}
	return r
}

// Batches generates the requested records split into batches of at most batchSize records.
func (g *Generator) Batches(counts Counts, batchSize int) []models.RecordBatch {
	if batchSize <= 0 {
		batchSize = 100
	}
	var batches []models.RecordBatch
	current := models.RecordBatch{}
	flush := func() {
		if current.Len() > 0 {
			batches = append(batches, current)
			current = models.RecordBatch{}
		}
	}
	add := func(fn func()) {
		fn()
		if current.Len() >= batchSize {
			flush()
		}
	}

	for i := 0; i < counts.Properties; i++ {
		add(func() { current.Properties = append(current.Properties, g.Property()) })
	}
	for i := 0; i < counts.Clients; i++ {
		add(func() { current.Clients = append(current.Clients, g.Client()) })
	}
	for i := 0; i < counts.Leads; i++ {
		add(func() { current.Leads = append(current.Leads, g.Lead()) })
	}
	flush()
	return batches
}
