package dto

// WebhookOrderItem una línea de la orden entrante del canal externo.
type WebhookOrderItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
}

// WebhookOrderRequest body para POST /api/integration/webhook/order.
type WebhookOrderRequest struct {
	CustomerPhone   string             `json:"customer_phone"`
	DeliveryAddress string             `json:"delivery_address,omitempty"`
	Source          string             `json:"source"` // whatsapp | n8n | manual ...
	Items           []WebhookOrderItem `json:"items"`
}

// WebhookOrderResponse resultado del fulfillment atómico de la orden.
type WebhookOrderResponse struct {
	OrderID string          `json:"order_id"`
	Status  string          `json:"status"`
	Items   []FulfilledItem `json:"items"`
}

// FulfilledItem stock resultante por línea tras el débito.
type FulfilledItem struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	NewStock  int    `json:"new_stock"`
}

// SyncItemRequest una operación de la sincronización masiva.
type SyncItemRequest struct {
	ProductID string `json:"product_id"`
	Quantity  int    `json:"quantity"`
	Operation string `json:"operation"` // add | subtract | set
}

// SyncInventoryRequest body para POST /api/integration/sync/inventory.
type SyncInventoryRequest struct {
	Items []SyncItemRequest `json:"items"`
}

// SyncItemResultDTO resultado por ítem de la sincronización.
type SyncItemResultDTO struct {
	ProductID string `json:"product_id"`
	Success   bool   `json:"success"`
	NewStock  int    `json:"new_stock,omitempty"`
	Error     string `json:"error,omitempty"`
}

// SyncInventoryResponse resumen de la sincronización masiva.
type SyncInventoryResponse struct {
	Processed int                 `json:"processed"`
	Succeeded int                 `json:"succeeded"`
	Failed    int                 `json:"failed"`
	Results   []SyncItemResultDTO `json:"results"`
}
