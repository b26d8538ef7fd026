package catalog

import (
	"fmt"

	"github.com/shopspring/decimal"
)

type productOpt func(*Product)

func newProduct(id, category, name, price, description string, opts ...productOpt) Product {
	p := Product{
		ID:          id,
		Name:        name,
		Description: description,
		Price:       decimal.RequireFromString(price),
		Category:    category,
		Images:      []string{fmt.Sprintf("/images/products/%s-1.jpg", id), fmt.Sprintf("/images/products/%s-2.jpg", id)},
		InStock:     true,
	}
	for _, o := range opts {
		o(&p)
	}
	return p
}

func sale(price string) productOpt {
	return func(p *Product) {
		sp := decimal.RequireFromString(price)
		p.SalePrice = &sp
		p.OnSale = true
	}
}

func rated(r float64, n int) productOpt {
	return func(p *Product) { p.Rating, p.ReviewCount = r, n }
}

func specs(kv ...string) productOpt {
	return func(p *Product) {
		for i := 0; i+1 < len(kv); i += 2 {
			p.Specifications = append(p.Specifications, Specification{Name: kv[i], Value: kv[i+1]})
		}
	}
}

func full(text string) productOpt { return func(p *Product) { p.FullDescription = text } }

func review(author string, rating int, date, content string) productOpt {
	return func(p *Product) {
		p.Reviews = append(p.Reviews, Review{Author: author, Rating: rating, Date: date, Content: content})
	}
}

var (
	featured   productOpt = func(p *Product) { p.Featured = true }
	isNew      productOpt = func(p *Product) { p.IsNew = true }
	bestseller productOpt = func(p *Product) { p.IsBestseller = true }
	outOfStock productOpt = func(p *Product) { p.InStock = false }
)

// Seed returns a fresh copy of the built-in catalog, in display order.
func Seed() []Product {
	return []Product{
		newProduct("p1", "wiring", "Romex 14/2 NM-B Cable, 250 ft", "89.99",
			"Non-metallic sheathed cable for residential branch circuits.",
			sale("79.99"), featured, bestseller, rated(4.7, 212),
			specs("Type", "Romex", "Gauge", "14 AWG", "Brand", "Asly", "Length", "250 ft", "Voltage", "600V"),
			full("Two insulated copper conductors plus a bare ground inside a PVC jacket. Rated for dry locations at 90C."),
			review("Mike R.", 5, "2024-03-02", "Pulls clean through bored studs, jacket strips easily."),
			review("Dana K.", 4, "2024-01-18", "Good cable, box was a little crushed on arrival.")),
		newProduct("p2", "wiring", "THHN 12 AWG Stranded Wire, 500 ft", "64.50",
			"Stranded copper building wire with nylon jacket for conduit runs.",
			isNew, rated(4.5, 87),
			specs("Type", "THHN", "Gauge", "12 AWG", "Brand", "Electra", "Length", "500 ft")),
		newProduct("p3", "wiring", "UF-B 12/2 Underground Feeder Cable, 100 ft", "72.00",
			"Direct burial cable for outdoor circuits and landscape lighting.",
			rated(4.3, 54),
			specs("Type", "UF Cable", "Gauge", "12 AWG", "Brand", "PowerTech", "Length", "100 ft")),
		newProduct("p4", "wiring", "MC Cable 10/3 Aluminum Armored, 250 ft", "189.00",
			"Interlocked aluminum armor cable for commercial installs.",
			sale("169.00"), featured, rated(4.6, 41),
			specs("Type", "MC Cable", "Gauge", "10 AWG", "Brand", "VoltMaster", "Length", "250 ft")),
		newProduct("p5", "wiring", "SER 6-6-6-8 Service Entrance Cable, 50 ft", "245.00",
			"Aluminum service entrance cable for feeders and subpanels.",
			outOfStock, rated(4.2, 19),
			specs("Type", "SER Cable", "Gauge", "6 AWG", "Brand", "CircuitPro", "Length", "50 ft")),

		newProduct("p6", "switches", "Single Pole Toggle Switch, 15A", "2.49",
			"Residential grade toggle switch with side and back wiring.",
			bestseller, rated(4.4, 310),
			specs("Type", "Toggle Switches", "Rating", "15 Amp", "Brand", "Asly", "Color", "White")),
		newProduct("p7", "switches", "Decorator Rocker Switch, 20A", "4.99",
			"Commercial grade paddle rocker switch.",
			rated(4.5, 120),
			specs("Type", "Rocker Switches", "Rating", "20 Amp", "Brand", "Electra")),
		newProduct("p8", "switches", "LED Slide Dimmer, 600W", "24.99",
			"Smooth dimming for LED and incandescent loads.",
			sale("19.99"), isNew, rated(4.6, 98),
			specs("Type", "Dimmers", "Rating", "15 Amp", "Brand", "PowerTech")),
		newProduct("p9", "switches", "Wi-Fi Smart Switch", "39.99",
			"App and voice controlled switch, no hub required.",
			isNew, featured, rated(4.1, 65),
			specs("Type", "Smart Switches", "Rating", "15 Amp", "Brand", "VoltMaster")),
		newProduct("p10", "switches", "GFCI Outlet, Tamper Resistant, 20A", "18.99",
			"Self-testing ground fault receptacle for kitchens and baths.",
			bestseller, rated(4.8, 402),
			specs("Type", "GFCI Outlets", "Rating", "20 Amp", "Brand", "Asly"),
			review("Sam T.", 5, "2024-02-11", "Trips exactly when it should. Clear status LED.")),

		newProduct("p11", "lighting", "6 in. LED Recessed Downlight, 4-Pack", "59.99",
			"Canless wafer lights with selectable color temperature.",
			sale("49.99"), featured, bestseller, rated(4.7, 233),
			specs("Type", "Recessed", "Wattage", "12W", "Brand", "Asly", "Lumens", "900")),
		newProduct("p12", "lighting", "LED Track Lighting Kit, 4 Heads", "129.00",
			"Adjustable track heads for kitchens and galleries.",
			isNew, rated(4.4, 58),
			specs("Type", "Track Lighting", "Wattage", "28W", "Brand", "Electra")),
		newProduct("p13", "lighting", "LED Flood Light, 5000 Lumen", "44.99",
			"Weatherproof outdoor security flood light.",
			rated(4.5, 140),
			specs("Type", "Flood Lights", "Wattage", "50W", "Brand", "PowerTech")),
		newProduct("p14", "lighting", "LED Strip Light, 16 ft", "21.99",
			"Dimmable tape light with adhesive backing.",
			isNew, rated(4.0, 77),
			specs("Type", "LED Strips", "Wattage", "8W", "Brand", "VoltMaster")),
		newProduct("p15", "lighting", "Industrial Pendant Fixture", "74.99",
			"Vintage-style pendant with matte black shade.",
			rated(4.3, 33),
			specs("Type", "Fixtures", "Wattage", "40W", "Brand", "CircuitPro")),
		newProduct("p16", "lighting", "Under Cabinet Puck Light, 3-Pack", "32.50",
			"Low-profile led puck lights for cabinets and shelves.",
			outOfStock, rated(4.2, 45),
			specs("Type", "Fixtures", "Wattage", "3W", "Brand", "Asly")),

		newProduct("p17", "breakers", "Single Pole Breaker, 15A", "8.99",
			"Standard plug-on breaker for general lighting circuits.",
			bestseller, rated(4.8, 520),
			specs("Type", "Standard", "Amperage", "15 Amp", "Brand", "CircuitPro")),
		newProduct("p18", "breakers", "GFCI Breaker, 20A", "49.99",
			"Ground fault breaker with self-test.",
			rated(4.6, 88),
			specs("Type", "GFCI", "Amperage", "20 Amp", "Brand", "Electra")),
		newProduct("p19", "breakers", "AFCI Breaker, 20A", "44.99",
			"Arc fault protection for bedroom circuits.",
			sale("39.99"), featured, rated(4.5, 61),
			specs("Type", "AFCI", "Amperage", "20 Amp", "Brand", "Asly")),
		newProduct("p20", "breakers", "Dual Function AFCI/GFCI Breaker, 15A", "59.99",
			"Combined arc and ground fault protection in one pole.",
			isNew, rated(4.4, 37),
			specs("Type", "Dual Function", "Amperage", "15 Amp", "Brand", "PowerTech")),
		newProduct("p21", "breakers", "Main Breaker, 100A", "119.00",
			"Two pole main breaker for residential panels.",
			rated(4.7, 22),
			specs("Type", "Main Breakers", "Amperage", "100 Amp", "Brand", "VoltMaster")),

		newProduct("p22", "tools", "Klein Tools Wire Stripper/Cutter", "19.99",
			"Strips and cuts 10-18 AWG solid wire.",
			featured, bestseller, rated(4.9, 840),
			specs("Type", "Wire Strippers", "Brand", "Klein Tools")),
		newProduct("p23", "tools", "Fluke 117 Digital Multimeter", "239.99",
			"True-RMS meter with non-contact voltage detection.",
			sale("214.99"), featured, rated(4.9, 390),
			specs("Type", "Testers & Meters", "Brand", "Fluke"),
			review("Lee W.", 5, "2023-11-30", "The meter every electrician should own.")),
		newProduct("p24", "tools", "Milwaukee M18 Cordless Drill Kit", "199.00",
			"Brushless drill driver with two batteries.",
			isNew, rated(4.7, 150),
			specs("Type", "Power Tools", "Brand", "Milwaukee")),
		newProduct("p25", "tools", "DeWalt Ratcheting Crimper", "34.99",
			"Crimps insulated and non-insulated terminals.",
			rated(4.3, 28),
			specs("Type", "Crimpers", "Brand", "DeWalt")),
		newProduct("p26", "tools", "Greenlee Lineman's Pliers", "42.50",
			"High leverage pliers with crimping die.",
			rated(4.6, 73),
			specs("Type", "Hand Tools", "Brand", "Greenlee")),
		newProduct("p27", "tools", "Non-Contact Voltage Tester", "24.99",
			"Pen style tester with LED and audible alert.",
			bestseller, rated(4.5, 260),
			specs("Type", "Testers & Meters", "Brand", "Asly")),

		newProduct("p28", "safety", "Class 0 Insulated Rubber Gloves", "64.99",
			"Lineman gloves tested to 1000V AC.",
			featured, rated(4.6, 48),
			specs("Type", "Insulated Gloves", "Rating", "Class 0 (1000V)", "Brand", "Electra")),
		newProduct("p29", "safety", "Anti-Fog Safety Glasses", "9.99",
			"ANSI Z87.1 rated clear lens glasses.",
			rated(4.4, 190),
			specs("Type", "Safety Glasses", "Brand", "Asly")),
		newProduct("p30", "safety", "Lockout/Tagout Kit, 12-Piece", "54.99",
			"Padlocks, hasps and tags for breaker lockout.",
			sale("44.99"), isNew, rated(4.5, 36),
			specs("Type", "Lockout/Tagout", "Brand", "PowerTech")),
		newProduct("p31", "safety", "Class 2 Insulating Mat, 3x3 ft", "149.00",
			"Switchboard matting rated to 17000V.",
			rated(4.7, 12),
			specs("Type", "Insulating Mats", "Rating", "Class 2 (17000V)", "Brand", "VoltMaster")),
	}
}
