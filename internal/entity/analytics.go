package entity

// Payload types for the analytics endpoints. Counts are integers; currency
// and percentage values are rounded to two decimals before they reach JSON.

// StoreFunnel is the store-level conversion funnel for one window.
type StoreFunnel struct {
	TotalVisits       int     `json:"totalVisits"`
	UniqueVisitors    int     `json:"uniqueVisitors"`
	TotalProductViews int     `json:"totalProductViews"`
	AddToCarts        int     `json:"addToCarts"`
	Checkouts         int     `json:"checkouts"`
	Purchases         int     `json:"purchases"`
	TotalRevenue      float64 `json:"totalRevenue"`
	AvgOrderValue     float64 `json:"avgOrderValue"`
	ConversionRate    float64 `json:"conversionRate"`
	EngagementRate    float64 `json:"engagementRate"`
	AddToCartRate     float64 `json:"addToCartRate"`
	CheckoutRate      float64 `json:"checkoutRate"`
	PurchaseRate      float64 `json:"purchaseRate"`

	Stages         []FunnelStage `json:"stages"`
	BiggestDropOff *DropOff      `json:"biggestDropOff,omitempty"`
}

// FunnelStage is one step of the six-stage funnel; ConversionRate is
// computed against the previous stage, 100 for the first.
type FunnelStage struct {
	Name           string  `json:"name"`
	Count          int     `json:"count"`
	ConversionRate float64 `json:"conversionRate"`
}

// DropOff names the adjacent stage pair with the largest loss.
type DropOff struct {
	FromStage string  `json:"fromStage"`
	ToStage   string  `json:"toStage"`
	DropRate  float64 `json:"dropRate"`
}

// ProductFunnel is the per-product view→cart→purchase pipeline.
type ProductFunnel struct {
	ProductID          int     `json:"productId"`
	ProductName        string  `json:"productName"`
	Views              int     `json:"views"`
	AddToCarts         int     `json:"addToCarts"`
	Purchases          int     `json:"purchases"`
	ViewToCartRate     float64 `json:"viewToCartRate"`
	CartToPurchaseRate float64 `json:"cartToPurchaseRate"`
	ConversionRate     float64 `json:"conversionRate"`
}

// ProductPerformance is one row of the top-performing-products report.
type ProductPerformance struct {
	ProductID      int     `json:"productId"`
	Name           string  `json:"name"`
	Price          float64 `json:"price"`
	Views          int     `json:"views"`
	AddToCarts     int     `json:"addToCarts"`
	Purchases      int     `json:"purchases"`
	ConversionRate float64 `json:"conversionRate"`
}

// ConversionReport is the bare store conversion rate payload.
type ConversionReport struct {
	TotalVisits    int     `json:"totalVisits"`
	Purchases      int     `json:"purchases"`
	ConversionRate float64 `json:"conversionRate"`
}

// DailyPoint is one calendar day of the day-level analytics series.
type DailyPoint struct {
	Date         string  `json:"date"`
	Visits       int     `json:"visits"`
	ProductViews int     `json:"productViews"`
	Orders       int     `json:"orders"`
	Revenue      float64 `json:"revenue"`
}

// CustomerScore is one customer's quality score breakdown.
type CustomerScore struct {
	CustomerID         int     `json:"customerId"`
	Name               string  `json:"name"`
	Phone              string  `json:"phone"`
	TotalOrders        int     `json:"totalOrders"`
	DeliveredOrders    int     `json:"deliveredOrders"`
	TotalSpent         float64 `json:"totalSpent"`
	DaysSinceLastOrder int     `json:"daysSinceLastOrder"`
	FrequencyPoints    int     `json:"frequencyPoints"`
	MonetaryPoints     int     `json:"monetaryPoints"`
	RecencyPoints      int     `json:"recencyPoints"`
	CompletionPoints   int     `json:"completionPoints"`
	Score              int     `json:"score"`
	Tier               string  `json:"tier"`
}

// ProductHealth is one product's health score breakdown.
type ProductHealth struct {
	ProductID      int     `json:"productId"`
	Name           string  `json:"name"`
	UnitsSold      int     `json:"unitsSold"`
	Revenue        float64 `json:"revenue"`
	Margin         float64 `json:"margin"`
	DeliveryRate   float64 `json:"deliveryRate"`
	Stock          int     `json:"stock"`
	TotalOrders    int     `json:"totalOrders"`
	SalesPoints    int     `json:"salesPoints"`
	MarginPoints   int     `json:"marginPoints"`
	DeliveryPoints int     `json:"deliveryPoints"`
	StockPoints    int     `json:"stockPoints"`
	Score          int     `json:"score"`
	Recommendation string  `json:"recommendation"`
}

// ProfitReport aggregates profitability over delivered orders.
type ProfitReport struct {
	Revenue     float64 `json:"revenue"`
	COGS        float64 `json:"cogs"`
	Shipping    float64 `json:"shipping"`
	GrossProfit float64 `json:"grossProfit"`
	NetProfit   float64 `json:"netProfit"`
	Margin      float64 `json:"margin"`
	OrderCount  int     `json:"orderCount"`

	TopProducts []ProductProfit  `json:"topProducts"`
	Categories  []CategoryProfit `json:"categories"`
	Daily       []DailyProfit    `json:"daily"`
}

type ProductProfit struct {
	ProductID int     `json:"productId"`
	Name      string  `json:"name"`
	Units     int     `json:"units"`
	Revenue   float64 `json:"revenue"`
	COGS      float64 `json:"cogs"`
	Profit    float64 `json:"profit"`
	Margin    float64 `json:"margin"`
}

type CategoryProfit struct {
	Category string  `json:"category"`
	Units    int     `json:"units"`
	Revenue  float64 `json:"revenue"`
	COGS     float64 `json:"cogs"`
	Profit   float64 `json:"profit"`
	Margin   float64 `json:"margin"`
}

type DailyProfit struct {
	Date    string  `json:"date"`
	Orders  int     `json:"orders"`
	Revenue float64 `json:"revenue"`
	COGS    float64 `json:"cogs"`
	Profit  float64 `json:"profit"`
}

// CODReport tracks cash-on-delivery performance against the whole order book.
type CODReport struct {
	TotalOrders      int     `json:"totalOrders"`
	CODOrders        int     `json:"codOrders"`
	CODShare         float64 `json:"codShare"`
	Delivered        int     `json:"delivered"`
	Cancelled        int     `json:"cancelled"`
	Returned         int     `json:"returned"`
	DeliveryRate     float64 `json:"deliveryRate"`
	CancellationRate float64 `json:"cancellationRate"`
	ReturnRate       float64 `json:"returnRate"`
	CollectedRevenue float64 `json:"collectedRevenue"`
}

// ReturnsReport aggregates returned/refunded orders.
type ReturnsReport struct {
	TotalOrders  int               `json:"totalOrders"`
	Returned     int               `json:"returned"`
	Refunded     int               `json:"refunded"`
	ReturnRate   float64           `json:"returnRate"`
	RefundRate   float64           `json:"refundRate"`
	LostRevenue  float64           `json:"lostRevenue"`
	TopReturned  []ReturnedProduct `json:"topReturned"`
}

type ReturnedProduct struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Value       float64 `json:"value"`
}

// DeliveryReport combines the delivery rate with status-transition timings
// derived from the order status history log.
type DeliveryReport struct {
	TotalOrders          int     `json:"totalOrders"`
	Delivered            int     `json:"delivered"`
	Shipped              int     `json:"shipped"`
	Cancelled            int     `json:"cancelled"`
	DeliveryRate         float64 `json:"deliveryRate"`
	AvgConfirmationHours float64 `json:"avgConfirmationHours"`
	AvgShippingHours     float64 `json:"avgShippingHours"`
	AvgDeliveryHours     float64 `json:"avgDeliveryHours"`
}

// AbandonedCartReport aggregates expired guest carts. UnparsableCarts counts
// carts whose serialized item list failed to decode; they stay in cart
// totals but contribute no items.
type AbandonedCartReport struct {
	TotalCarts       int                `json:"totalCarts"`
	AbandonedCarts   int                `json:"abandonedCarts"`
	ConvertedCarts   int                `json:"convertedCarts"`
	UnparsableCarts  int                `json:"unparsableCarts"`
	AbandonmentRate  float64            `json:"abandonmentRate"`
	LostRevenue      float64            `json:"lostRevenue"`
	TopAbandoned     []AbandonedProduct `json:"topAbandoned"`
}

type AbandonedProduct struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Value       float64 `json:"value"`
}

// PaymentMethodStats is one payment method's share of the order book.
type PaymentMethodStats struct {
	Method       string  `json:"method"`
	Orders       int     `json:"orders"`
	Revenue      float64 `json:"revenue"`
	Share        float64 `json:"share"`
	DeliveryRate float64 `json:"deliveryRate"`
}

// RegionStats is one region's order activity. Region falls back through
// governorate → city → "unspecified".
type RegionStats struct {
	Region        string  `json:"region"`
	Orders        int     `json:"orders"`
	Revenue       float64 `json:"revenue"`
	AvgOrderValue float64 `json:"avgOrderValue"`
	DeliveryRate  float64 `json:"deliveryRate"`
}

// TeamMemberStats is one staff member's order handling activity.
type TeamMemberStats struct {
	UserID          int     `json:"userId"`
	OrdersCreated   int     `json:"ordersCreated"`
	OrdersConfirmed int     `json:"ordersConfirmed"`
	Delivered       int     `json:"delivered"`
	DeliveryRate    float64 `json:"deliveryRate"`
	Revenue         float64 `json:"revenue"`
}

// StockForecast projects inventory exhaustion from trailing 30-day velocity.
type StockForecast struct {
	Products      []StockForecastItem `json:"products"`
	CriticalCount int                 `json:"criticalCount"`
	WarningCount  int                 `json:"warningCount"`
}

type StockForecastItem struct {
	ProductID         int     `json:"productId"`
	Name              string  `json:"name"`
	Stock             int     `json:"stock"`
	UnitsSold30d      int     `json:"unitsSold30d"`
	DailyAvgSales     float64 `json:"dailyAvgSales"`
	DaysUntilStockout int     `json:"daysUntilStockout"`
	Urgency           string  `json:"urgency"`
	SuggestedReorder  int     `json:"suggestedReorder"`
	Overstocked       bool    `json:"overstocked"`
}

// CouponStats is one coupon's redemption performance.
type CouponStats struct {
	Code         string  `json:"code"`
	Type         string  `json:"type"`
	Value        float64 `json:"value"`
	UsageCount   int     `json:"usageCount"`
	UsageLimit   int     `json:"usageLimit"`
	UsageRate    float64 `json:"usageRate"`
	Active       bool    `json:"active"`
	OrderRevenue float64 `json:"orderRevenue"`
}

// DashboardSummary combines the primary widgets shown on the overview page.
type DashboardSummary struct {
	Funnel      *StoreFunnel         `json:"funnel"`
	Profit      *ProfitReport        `json:"profit"`
	TopProducts []ProductPerformance `json:"topProducts"`
}
