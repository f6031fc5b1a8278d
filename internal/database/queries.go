package database

// Slot ledger queries. The FOR UPDATE read is the exclusive-access point of
// the admission transactor; every read-modify-write of a slot's counters
// goes through it.
const (
	EnsureSlotSQL = `
		INSERT INTO time_slots (id, start_time, capacity, current_orders, status)
		VALUES ($1, $2, $3, 0, 'available')
		ON CONFLICT (id) DO NOTHING`

	GetSlotForUpdateSQL = `
		SELECT id, start_time, capacity, current_orders, status
		FROM time_slots WHERE id = $1
		FOR UPDATE`

	GetSlotSQL = `
		SELECT id, start_time, capacity, current_orders, status
		FROM time_slots WHERE id = $1`

	GetSlotsInRangeSQL = `
		SELECT id, start_time, capacity, current_orders, status
		FROM time_slots
		WHERE start_time >= $1 AND start_time < $2
		ORDER BY start_time ASC`

	UpdateSlotCountSQL = `
		UPDATE time_slots SET current_orders = $1, status = $2
		WHERE id = $3`
)

// Order queries.
const (
	InsertOrderSQL = `
		INSERT INTO orders (id, number, user_id, user_email, customer_name, customer_mobile,
			total_amount, status, slot_id, scheduled_time, transaction_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at`

	InsertOrderItemSQL = `
		INSERT INTO order_items (order_id, menu_item_id, name, quantity, price)
		VALUES ($1, $2, $3, $4, $5)`

	InsertOrderStatusLogSQL = `
		INSERT INTO order_status_log (order_id, status, changed_by, notes)
		VALUES ($1, $2, $3, $4)`

	GetOrderForUpdateSQL = `
		SELECT id, number, user_id, user_email, customer_name, customer_mobile,
			total_amount, status, slot_id, scheduled_time, transaction_id, created_at, updated_at
		FROM orders WHERE id = $1
		FOR UPDATE`

	GetOrderSQL = `
		SELECT id, number, user_id, user_email, customer_name, customer_mobile,
			total_amount, status, slot_id, scheduled_time, transaction_id, created_at, updated_at
		FROM orders WHERE id = $1`

	UpdateOrderStatusSQL = `
		UPDATE orders SET status = $1, updated_at = NOW()
		WHERE id = $2`

	ListOrdersByUserSQL = `
		SELECT id, number, user_id, user_email, customer_name, customer_mobile,
			total_amount, status, slot_id, scheduled_time, transaction_id, created_at, updated_at
		FROM orders
		WHERE user_id = $1
		ORDER BY created_at DESC`

	ListAllOrdersSQL = `
		SELECT id, number, user_id, user_email, customer_name, customer_mobile,
			total_amount, status, slot_id, scheduled_time, transaction_id, created_at, updated_at
		FROM orders
		ORDER BY created_at DESC`

	ListOrderItemsSQL = `
		SELECT id, order_id, menu_item_id, name, quantity, price
		FROM order_items
		WHERE order_id = ANY($1)
		ORDER BY id ASC`

	GetOrderStatusHistorySQL = `
		SELECT status, changed_by, changed_at, notes
		FROM order_status_log
		WHERE order_id = $1
		ORDER BY changed_at ASC`

	GetNextOrderNumberSQL = `
		SELECT COALESCE(MAX(CAST(SUBSTRING(number FROM 'ORD_[0-9]{8}_([0-9]{3,})') AS INTEGER)), 0) + 1
		FROM orders
		WHERE number LIKE $1`

	CountActiveOrdersForSlotSQL = `
		SELECT COUNT(*) FROM orders
		WHERE slot_id = $1 AND status <> 'cancelled'`
)

// Menu queries.
const (
	ListAvailableMenuItemsSQL = `
		SELECT id, name, description, price, category, image_url, is_available,
			preparation_time, created_at, updated_at
		FROM menu_items
		WHERE is_available = TRUE
		ORDER BY category, name`

	ListAllMenuItemsSQL = `
		SELECT id, name, description, price, category, image_url, is_available,
			preparation_time, created_at, updated_at
		FROM menu_items
		ORDER BY category, name`

	GetMenuItemSQL = `
		SELECT id, name, description, price, category, image_url, is_available,
			preparation_time, created_at, updated_at
		FROM menu_items WHERE id = $1`

	InsertMenuItemSQL = `
		INSERT INTO menu_items (id, name, description, price, category, image_url,
			is_available, preparation_time)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at`
)

// Store settings queries. A single-row table backing the admin
// open/closed gate.
const (
	GetStoreOpenSQL = `
		SELECT is_open FROM store_settings WHERE id = 1`

	SetStoreOpenSQL = `
		INSERT INTO store_settings (id, is_open, updated_at)
		VALUES (1, $1, NOW())
		ON CONFLICT (id) DO UPDATE SET is_open = EXCLUDED.is_open, updated_at = NOW()`
)
