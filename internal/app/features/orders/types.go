package orders

// lineRequest is one entry of the products array in a cart write.
type lineRequest struct {
	ID       string `json:"id" validate:"required,objectid" label:"Product id"`
	Quantity *int   `json:"quantity"`
	Size     string `json:"size" validate:"max=50" label:"Size"`
	Color    string `json:"color" validate:"max=50" label:"Color"`
}

// cartRequest is the body of POST and PUT /orders.
type cartRequest struct {
	Products []lineRequest `json:"products" validate:"required,max=100,dive" label:"Products"`
}

// placeRequest is the body of POST /orders/place-order.
type placeRequest struct {
	Total     *float64 `json:"total"`
	AddressID string   `json:"addressId" validate:"required,objectid" label:"Address"`
}

// statusRequest is the body of PATCH /orders/status.
type statusRequest struct {
	OrderID string `json:"orderId" validate:"required,objectid" label:"Order id"`
	Status  *int   `json:"status" validate:"required" label:"Status"`
}
