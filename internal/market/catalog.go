package market

import "strings"

type AssetType string

const (
	AssetStock  AssetType = "stock"
	AssetCrypto AssetType = "crypto"
)

// Asset is one tradable instrument from the reference catalog. The seed
// values below are the catalog baseline; live prices move on the Board.
type Asset struct {
	ID           string    `json:"id"`
	Code         string    `json:"code"`
	Name         string    `json:"name"`
	PriceMicros  int64     `json:"price_micros"`
	ChangePct    float64   `json:"change_pct"`
	Volume       int64     `json:"volume"`
	MarketCapWon int64     `json:"market_cap_won"`
	Sector       string    `json:"sector,omitempty"`
	Symbol       string    `json:"symbol,omitempty"`
	Supply       int64     `json:"supply,omitempty"`
	MaxSupply    int64     `json:"max_supply,omitempty"` // 0 means uncapped
	Type         AssetType `json:"type"`
	Logo         string    `json:"logo,omitempty"`
}

var stockSeed = []Asset{
	{ID: "samsung", Code: "005930", Name: "Samsung Electronics", PriceMicros: 55_500 * MicrosPerWon, ChangePct: -0.36, Volume: 7_238_000_000, MarketCapWon: 331_000_000_000_000, Sector: "Electronics", Type: AssetStock, Logo: "💻"},
	{ID: "sk-hynix", Code: "000660", Name: "SK Hynix", PriceMicros: 134_000 * MicrosPerWon, ChangePct: 1.52, Volume: 3_500_000_000, MarketCapWon: 97_000_000_000_000, Sector: "Semiconductors", Type: AssetStock, Logo: "🔌"},
	{ID: "naver", Code: "035420", Name: "NAVER", PriceMicros: 186_500 * MicrosPerWon, ChangePct: 0.81, Volume: 980_000_000, MarketCapWon: 30_600_000_000_000, Sector: "Internet Services", Type: AssetStock, Logo: "🔍"},
	{ID: "kakao", Code: "035720", Name: "Kakao", PriceMicros: 49_800 * MicrosPerWon, ChangePct: -0.40, Volume: 1_250_000_000, MarketCapWon: 22_100_000_000_000, Sector: "Internet Services", Type: AssetStock, Logo: "💬"},
	{ID: "hyundai", Code: "005380", Name: "Hyundai Motor", PriceMicros: 175_500 * MicrosPerWon, ChangePct: -1.13, Volume: 850_000_000, MarketCapWon: 37_500_000_000_000, Sector: "Automotive", Type: AssetStock, Logo: "🚗"},
	{ID: "lg-chem", Code: "051910", Name: "LG Chem", PriceMicros: 388_000 * MicrosPerWon, ChangePct: -0.26, Volume: 320_000_000, MarketCapWon: 27_400_000_000_000, Sector: "Chemicals", Type: AssetStock, Logo: "🧪"},
	{ID: "samsung-biologics", Code: "207940", Name: "Samsung Biologics", PriceMicros: 788_000 * MicrosPerWon, ChangePct: 0.51, Volume: 110_000_000, MarketCapWon: 52_000_000_000_000, Sector: "Biopharma", Type: AssetStock, Logo: "💊"},
	{ID: "samsung-sdi", Code: "006400", Name: "Samsung SDI", PriceMicros: 426_500 * MicrosPerWon, ChangePct: 1.67, Volume: 430_000_000, MarketCapWon: 29_300_000_000_000, Sector: "Electronics", Type: AssetStock, Logo: "🔋"},
	{ID: "doosan-enerbility", Code: "042660", Name: "Doosan Enerbility", PriceMicros: 16_050 * MicrosPerWon, ChangePct: -0.62, Volume: 2_800_000_000, MarketCapWon: 9_700_000_000_000, Sector: "Heavy Industry", Type: AssetStock, Logo: "⚙️"},
	{ID: "lg-energy", Code: "373220", Name: "LG Energy Solution", PriceMicros: 388_000 * MicrosPerWon, ChangePct: 0.78, Volume: 250_000_000, MarketCapWon: 90_700_000_000_000, Sector: "Electronics", Type: AssetStock, Logo: "🔋"},
}

var cryptoSeed = []Asset{
	{ID: "bitcoin", Code: "BTC/KRW", Name: "Bitcoin", PriceMicros: 45_000_000 * MicrosPerWon, ChangePct: 2.1, Volume: 25_000_000_000_000, MarketCapWon: 850_000_000_000_000, Symbol: "BTC", Supply: 19_000_000, MaxSupply: 21_000_000, Type: AssetCrypto, Logo: "₿"},
	{ID: "ethereum", Code: "ETH/KRW", Name: "Ethereum", PriceMicros: 2_500_000 * MicrosPerWon, ChangePct: 1.8, Volume: 15_000_000_000_000, MarketCapWon: 300_000_000_000_000, Symbol: "ETH", Supply: 120_000_000, Type: AssetCrypto, Logo: "Ξ"},
	{ID: "ripple", Code: "XRP/KRW", Name: "Ripple", PriceMicros: 700 * MicrosPerWon, ChangePct: -0.5, Volume: 2_000_000_000_000, MarketCapWon: 35_000_000_000_000, Symbol: "XRP", Supply: 45_000_000_000, MaxSupply: 100_000_000_000, Type: AssetCrypto, Logo: "💧"},
	{ID: "solana", Code: "SOL/KRW", Name: "Solana", PriceMicros: 120_000 * MicrosPerWon, ChangePct: 3.2, Volume: 5_000_000_000_000, MarketCapWon: 50_000_000_000_000, Symbol: "SOL", Supply: 410_000_000, Type: AssetCrypto, Logo: "☀️"},
	{ID: "cardano", Code: "ADA/KRW", Name: "Cardano", PriceMicros: 550 * MicrosPerWon, ChangePct: 0.7, Volume: 1_500_000_000_000, MarketCapWon: 20_000_000_000_000, Symbol: "ADA", Supply: 35_000_000_000, MaxSupply: 45_000_000_000, Type: AssetCrypto, Logo: "🔷"},
	{ID: "dogecoin", Code: "DOGE/KRW", Name: "Dogecoin", PriceMicros: 120 * MicrosPerWon, ChangePct: -1.2, Volume: 1_000_000_000_000, MarketCapWon: 15_000_000_000_000, Symbol: "DOGE", Supply: 140_000_000_000, Type: AssetCrypto, Logo: "🐕"},
	{ID: "polkadot", Code: "DOT/KRW", Name: "Polkadot", PriceMicros: 8_500 * MicrosPerWon, ChangePct: 1.5, Volume: 800_000_000_000, MarketCapWon: 10_000_000_000_000, Symbol: "DOT", Supply: 1_200_000_000, Type: AssetCrypto, Logo: "⚫"},
	{ID: "shiba-inu", Code: "SHIB/KRW", Name: "Shiba Inu", PriceMicros: 3_500, ChangePct: -0.8, Volume: 500_000_000_000, MarketCapWon: 2_000_000_000_000, Symbol: "SHIB", Supply: 589_000_000_000_000, Type: AssetCrypto, Logo: "🐶"},
	{ID: "polygon", Code: "MATIC/KRW", Name: "Polygon", PriceMicros: 950 * MicrosPerWon, ChangePct: 2.3, Volume: 700_000_000_000, MarketCapWon: 9_000_000_000_000, Symbol: "MATIC", Supply: 9_500_000_000, MaxSupply: 10_000_000_000, Type: AssetCrypto, Logo: "🔷"},
	{ID: "avalanche", Code: "AVAX/KRW", Name: "Avalanche", PriceMicros: 35_000 * MicrosPerWon, ChangePct: 1.1, Volume: 900_000_000_000, MarketCapWon: 12_000_000_000_000, Symbol: "AVAX", Supply: 350_000_000, MaxSupply: 720_000_000, Type: AssetCrypto, Logo: "❄️"},
}

// Catalog is the read-only set of tradable instruments. Nothing in the
// rest of the system writes back into it.
type Catalog struct {
	assets []Asset
	byID   map[string]int
	byCode map[string]int
}

func NewCatalog() *Catalog {
	assets := make([]Asset, 0, len(stockSeed)+len(cryptoSeed))
	assets = append(assets, stockSeed...)
	assets = append(assets, cryptoSeed...)

	c := &Catalog{
		assets: assets,
		byID:   make(map[string]int, len(assets)),
		byCode: make(map[string]int, len(assets)),
	}
	for i, a := range assets {
		c.byID[a.ID] = i
		c.byCode[a.Code] = i
	}
	return c
}

func (c *Catalog) All() []Asset {
	out := make([]Asset, len(c.assets))
	copy(out, c.assets)
	return out
}

func (c *Catalog) ByType(t AssetType) []Asset {
	var out []Asset
	for _, a := range c.assets {
		if a.Type == t {
			out = append(out, a)
		}
	}
	return out
}

func (c *Catalog) ByID(id string) (Asset, bool) {
	i, ok := c.byID[id]
	if !ok {
		return Asset{}, false
	}
	return c.assets[i], true
}

func (c *Catalog) ByCode(code string) (Asset, bool) {
	i, ok := c.byCode[code]
	if !ok {
		return Asset{}, false
	}
	return c.assets[i], true
}

// Search matches the query against id, code, name and symbol,
// case-insensitively.
func (c *Catalog) Search(query string) []Asset {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []Asset
	for _, a := range c.assets {
		if strings.Contains(strings.ToLower(a.ID), q) ||
			strings.Contains(strings.ToLower(a.Code), q) ||
			strings.Contains(strings.ToLower(a.Name), q) ||
			strings.Contains(strings.ToLower(a.Symbol), q) {
			out = append(out, a)
		}
	}
	return out
}

func (c *Catalog) Len() int {
	return len(c.assets)
}
