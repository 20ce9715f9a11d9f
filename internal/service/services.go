package service

// Services bundles the wired service layer for the API router.
type Services struct {
	Sessions      *SessionService
	BusinessUnits *BusinessUnitService
	Orders        *OrderService
	Customers     *CustomerService
	Products      *ProductService
	Prices        *PriceService
	Promotions    *PromotionService
	Reports       *ReportService
	Assistant     *AssistantService
}
