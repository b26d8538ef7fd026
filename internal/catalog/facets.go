package catalog

import (
	"sort"
	"strconv"
	"strings"

	"github.com/go-faster/errors"
)

var ErrUnknownFacet = errors.New("unknown facet")

const brandFacetKey = "brand"

// Category is a storefront department together with the facets that narrow it.
type Category struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Description string  `json:"description"`
	Facets      []Facet `json:"facets"`
}

// Facet narrows products by one specification. Selected options are OR-ed;
// separate facets are AND-ed.
type Facet struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Spec    string   `json:"-"`
	Options []Option `json:"options"`
}

type Option struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	match func(string) bool
}

// FacetSelection maps a facet key to the selected option ids.
type FacetSelection map[string][]string

func (o Option) matches(value string) bool {
	if o.match != nil {
		return o.match(value)
	}
	v := strings.TrimSpace(value)
	return strings.EqualFold(v, o.ID) || strings.EqualFold(v, o.Name)
}

func (f Facet) option(id string) (Option, bool) {
	for _, o := range f.Options {
		if strings.EqualFold(o.ID, id) {
			return o, true
		}
	}
	return Option{}, false
}

func opt(id, name string) Option { return Option{ID: id, Name: name} }

// wattOpt matches a "<n>W" spec value whose number satisfies in.
func wattOpt(id, name string, in func(w float64) bool) Option {
	return Option{ID: id, Name: name, match: func(v string) bool {
		w, ok := leadingNumber(v)
		return ok && in(w)
	}}
}

func leadingNumber(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	for end < len(s) && (s[end] == '.' || (s[end] >= '0' && s[end] <= '9')) {
		end++
	}
	if end == 0 {
		return 0, false
	}
	n, err := strconv.ParseFloat(s[:end], 64)
	return n, err == nil
}

var houseBrands = []Option{
	opt("asly", "Asly"),
	opt("electra", "Electra"),
	opt("powertech", "PowerTech"),
	opt("voltmaster", "VoltMaster"),
	opt("circuitpro", "CircuitPro"),
}

var toolBrands = []Option{
	opt("klein", "Klein Tools"),
	opt("fluke", "Fluke"),
	opt("milwaukee", "Milwaukee"),
	opt("dewalt", "DeWalt"),
	opt("greenlee", "Greenlee"),
}

var categories = []Category{
	{
		ID: "wiring", Name: "Wiring & Cables", Description: "Romex, THHN, UF, MC cables",
		Facets: []Facet{
			{Key: "type", Name: "Types", Spec: "Type", Options: []Option{
				opt("romex", "Romex"), opt("thhn", "THHN"), opt("uf", "UF Cable"),
				opt("mc", "MC Cable"), opt("ser", "SER Cable"),
			}},
			{Key: "gauge", Name: "Gauges", Spec: "Gauge", Options: []Option{
				opt("14", "14 AWG"), opt("12", "12 AWG"), opt("10", "10 AWG"),
				opt("8", "8 AWG"), opt("6", "6 AWG"),
			}},
		},
	},
	{
		ID: "switches", Name: "Switches & Outlets", Description: "GFCI, toggle, smart switches",
		Facets: []Facet{
			{Key: "type", Name: "Types", Spec: "Type", Options: []Option{
				opt("toggle", "Toggle Switches"), opt("rocker", "Rocker Switches"), opt("dimmer", "Dimmers"),
				opt("smart", "Smart Switches"), opt("gfci", "GFCI Outlets"),
			}},
			{Key: "rating", Name: "Ratings", Spec: "Rating", Options: []Option{
				opt("15a", "15 Amp"), opt("20a", "20 Amp"), opt("30a", "30 Amp"),
			}},
		},
	},
	{
		ID: "lighting", Name: "Lighting", Description: "LED, recessed, fixtures",
		Facets: []Facet{
			{Key: "type", Name: "Types", Spec: "Type", Options: []Option{
				opt("recessed", "Recessed"), opt("track", "Track Lighting"), opt("flood", "Flood Lights"),
				opt("strip", "LED Strips"), opt("fixtures", "Fixtures"),
			}},
			{Key: "wattage", Name: "Wattage", Spec: "Wattage", Options: []Option{
				wattOpt("low", "Under 10W", func(w float64) bool { return w < 10 }),
				wattOpt("medium", "10-30W", func(w float64) bool { return w >= 10 && w <= 30 }),
				wattOpt("high", "Over 30W", func(w float64) bool { return w > 30 }),
			}},
		},
	},
	{
		ID: "breakers", Name: "Circuit Breakers", Description: "AFCI, GFCI, standard breakers",
		Facets: []Facet{
			{Key: "type", Name: "Types", Spec: "Type", Options: []Option{
				opt("standard", "Standard"), opt("gfci", "GFCI"), opt("afci", "AFCI"),
				opt("dual", "Dual Function"), opt("main", "Main Breakers"),
			}},
			{Key: "amperage", Name: "Amperage", Spec: "Amperage", Options: []Option{
				opt("15a", "15 Amp"), opt("20a", "20 Amp"), opt("30a", "30 Amp"),
				opt("50a", "50 Amp"), opt("100a", "100 Amp"),
			}},
		},
	},
	{
		ID: "tools", Name: "Tools", Description: "Testers, strippers, pliers",
		Facets: []Facet{
			{Key: "type", Name: "Types", Spec: "Type", Options: []Option{
				opt("hand", "Hand Tools"), opt("power", "Power Tools"), opt("testers", "Testers & Meters"),
				opt("strippers", "Wire Strippers"), opt("crimpers", "Crimpers"),
			}},
		},
	},
	{
		ID: "safety", Name: "Safety Equipment", Description: "Gloves, glasses, lockout/tagout",
		Facets: []Facet{
			{Key: "type", Name: "Types", Spec: "Type", Options: []Option{
				opt("gloves", "Insulated Gloves"), opt("glasses", "Safety Glasses"), opt("helmets", "Hard Hats"),
				opt("mats", "Insulating Mats"), opt("lockout", "Lockout/Tagout"),
			}},
			{Key: "rating", Name: "Ratings", Spec: "Rating", Options: []Option{
				opt("class00", "Class 00 (500V)"), opt("class0", "Class 0 (1000V)"),
				opt("class1", "Class 1 (7500V)"), opt("class2", "Class 2 (17000V)"),
			}},
		},
	},
}

// Categories lists the storefront departments with their full facet set.
func Categories() []Category {
	out := make([]Category, 0, len(categories))
	for _, c := range categories {
		c.Facets = FacetsFor(c.ID)
		out = append(out, c)
	}
	return out
}

func LookupCategory(id string) (Category, bool) {
	for _, c := range categories {
		if c.ID == id {
			return c, true
		}
	}
	return Category{}, false
}

// FacetsFor returns the facets available while browsing category. An empty
// category only offers the brand facet.
func FacetsFor(category string) []Facet {
	brand := Facet{Key: brandFacetKey, Name: "Brands", Spec: "Brand"}

	c, ok := LookupCategory(category)
	if !ok {
		brand.Options = append(append([]Option{}, houseBrands...), toolBrands...)
		return []Facet{brand}
	}

	if c.ID == "tools" {
		brand.Options = append(brand.Options, toolBrands...)
	}
	brand.Options = append(brand.Options, houseBrands...)

	out := make([]Facet, 0, len(c.Facets)+1)
	out = append(out, c.Facets...)
	return append(out, brand)
}

type resolvedFacet struct {
	spec    string
	options []Option
}

// resolveFacets validates sel against the category's facets.
func resolveFacets(category string, sel FacetSelection) ([]resolvedFacet, error) {
	if len(sel) == 0 {
		return nil, nil
	}

	available := FacetsFor(category)
	keys := make([]string, 0, len(sel))
	for k := range sel {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]resolvedFacet, 0, len(keys))
	for _, key := range keys {
		ids := sel[key]
		if len(ids) == 0 {
			continue
		}

		var (
			facet Facet
			found bool
		)
		for _, f := range available {
			if f.Key == key {
				facet, found = f, true
				break
			}
		}
		if !found {
			return nil, errors.Wrapf(ErrUnknownFacet, "%q", key)
		}

		rf := resolvedFacet{spec: facet.Spec}
		for _, id := range ids {
			o, ok := facet.option(id)
			if !ok {
				return nil, errors.Wrapf(ErrUnknownFacet, "%s=%q", key, id)
			}
			rf.options = append(rf.options, o)
		}
		out = append(out, rf)
	}
	return out, nil
}

func (rf resolvedFacet) matches(p Product) bool {
	v, ok := p.Spec(rf.spec)
	if !ok {
		return false
	}
	for _, o := range rf.options {
		if o.matches(v) {
			return true
		}
	}
	return false
}
