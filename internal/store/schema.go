package store

// SQLite schema. Money columns are NUMERIC; dates are YYYY-MM-DD text.
// Foreign keys carry no ON DELETE action: dependents are handled by the
// relation walk in relations.go and the engine only rejects dangling rows.
// stores.manager_id is deferred because stores and employees reference
// each other.
const (
	sqliteStoresTable = `
CREATE TABLE IF NOT EXISTS stores (
    store_id   INTEGER PRIMARY KEY,
    name       TEXT NOT NULL,
    location   TEXT NOT NULL,
    manager_id INTEGER REFERENCES employees(employee_id) DEFERRABLE INITIALLY DEFERRED
)`

	sqliteEmployeesTable = `
CREATE TABLE IF NOT EXISTS employees (
    employee_id INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    role        TEXT NOT NULL,
    store_id    INTEGER REFERENCES stores(store_id),
    salary      NUMERIC NOT NULL CHECK (salary >= 0),
    manager_id  INTEGER REFERENCES employees(employee_id),
    hire_date   DATE
)`

	sqliteCustomersTable = `
CREATE TABLE IF NOT EXISTS customers (
    customer_id INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    email       TEXT NOT NULL UNIQUE,
    phone       TEXT NOT NULL UNIQUE,
    city        TEXT NOT NULL
)`

	sqliteSuppliersTable = `
CREATE TABLE IF NOT EXISTS suppliers (
    supplier_id    INTEGER PRIMARY KEY,
    name           TEXT NOT NULL,
    contact_person TEXT NOT NULL,
    phone          TEXT NOT NULL UNIQUE,
    city           TEXT NOT NULL
)`

	sqliteProductsTable = `
CREATE TABLE IF NOT EXISTS products (
    product_id  INTEGER PRIMARY KEY,
    name        TEXT NOT NULL,
    category    TEXT NOT NULL,
    price       NUMERIC NOT NULL CHECK (price >= 0),
    stock       INTEGER NOT NULL CHECK (stock >= 0),
    supplier_id INTEGER NOT NULL REFERENCES suppliers(supplier_id)
)`

	sqliteOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
    order_id     INTEGER PRIMARY KEY,
    customer_id  INTEGER NOT NULL REFERENCES customers(customer_id),
    store_id     INTEGER REFERENCES stores(store_id),
    order_date   DATE NOT NULL DEFAULT (date('now')),
    total_amount NUMERIC NOT NULL CHECK (total_amount >= 0)
)`

	sqliteOrderItemsTable = `
CREATE TABLE IF NOT EXISTS order_items (
    order_item_id INTEGER PRIMARY KEY,
    order_id      INTEGER NOT NULL REFERENCES orders(order_id),
    product_id    INTEGER NOT NULL REFERENCES products(product_id),
    quantity      INTEGER NOT NULL CHECK (quantity > 0),
    price         NUMERIC NOT NULL CHECK (price >= 0)
)`

	sqlitePaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    payment_id     INTEGER PRIMARY KEY,
    order_id       INTEGER NOT NULL REFERENCES orders(order_id),
    amount         NUMERIC NOT NULL CHECK (amount >= 0),
    payment_method TEXT NOT NULL,
    payment_date   DATE NOT NULL DEFAULT (date('now'))
)`

	sqliteShipmentsTable = `
CREATE TABLE IF NOT EXISTS shipments (
    shipment_id   INTEGER PRIMARY KEY,
    product_id    INTEGER NOT NULL REFERENCES products(product_id),
    quantity      INTEGER NOT NULL CHECK (quantity > 0),
    shipment_date DATE NOT NULL DEFAULT (date('now'))
)`

	sqliteEmployeeAuditTable = `
CREATE TABLE IF NOT EXISTS employee_audit (
    audit_id    INTEGER PRIMARY KEY AUTOINCREMENT,
    audit_ref   TEXT NOT NULL UNIQUE,
    employee_id INTEGER NOT NULL,
    name        TEXT NOT NULL,
    role        TEXT NOT NULL,
    store_id    INTEGER,
    salary      NUMERIC NOT NULL,
    manager_id  INTEGER,
    hire_date   DATE,
    deleted_at  TEXT NOT NULL
)`

	sqliteTopSellingView = `
CREATE VIEW IF NOT EXISTS top_selling_products AS
SELECT p.product_id, p.name, SUM(oi.quantity) AS total_sold
FROM products p
JOIN order_items oi ON oi.product_id = p.product_id
GROUP BY p.product_id, p.name`

	sqliteStoreRevenueView = `
CREATE VIEW IF NOT EXISTS store_revenue AS
SELECT s.store_id, s.name, COALESCE(SUM(o.total_amount), 0) AS total_revenue
FROM stores s
LEFT JOIN orders o ON o.store_id = s.store_id
GROUP BY s.store_id, s.name`
)

// PostgreSQL schema. Every foreign key is deferrable so bulk loads can
// defer checks to commit.
const (
	pgStoresTable = `
CREATE TABLE IF NOT EXISTS stores (
    store_id   BIGINT PRIMARY KEY,
    name       VARCHAR(255) NOT NULL,
    location   VARCHAR(255) NOT NULL,
    manager_id BIGINT
)`

	pgEmployeesTable = `
CREATE TABLE IF NOT EXISTS employees (
    employee_id BIGINT PRIMARY KEY,
    name        VARCHAR(255) NOT NULL,
    role        VARCHAR(100) NOT NULL,
    store_id    BIGINT REFERENCES stores(store_id) DEFERRABLE INITIALLY IMMEDIATE,
    salary      NUMERIC(10,2) NOT NULL CHECK (salary >= 0),
    manager_id  BIGINT REFERENCES employees(employee_id) DEFERRABLE INITIALLY IMMEDIATE,
    hire_date   DATE
)`

	pgStoresManagerFK = `
DO $$
BEGIN
    IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'stores_manager_id_fkey') THEN
        ALTER TABLE stores ADD CONSTRAINT stores_manager_id_fkey
            FOREIGN KEY (manager_id) REFERENCES employees(employee_id) DEFERRABLE INITIALLY DEFERRED;
    END IF;
END
$$`

	pgCustomersTable = `
CREATE TABLE IF NOT EXISTS customers (
    customer_id BIGINT PRIMARY KEY,
    name        VARCHAR(255) NOT NULL,
    email       VARCHAR(255) NOT NULL UNIQUE,
    phone       VARCHAR(20) NOT NULL UNIQUE,
    city        VARCHAR(255) NOT NULL
)`

	pgSuppliersTable = `
CREATE TABLE IF NOT EXISTS suppliers (
    supplier_id    BIGINT PRIMARY KEY,
    name           VARCHAR(255) NOT NULL,
    contact_person VARCHAR(255) NOT NULL,
    phone          VARCHAR(20) NOT NULL UNIQUE,
    city           VARCHAR(255) NOT NULL
)`

	pgProductsTable = `
CREATE TABLE IF NOT EXISTS products (
    product_id  BIGINT PRIMARY KEY,
    name        VARCHAR(255) NOT NULL,
    category    VARCHAR(100) NOT NULL,
    price       NUMERIC(10,2) NOT NULL CHECK (price >= 0),
    stock       BIGINT NOT NULL CHECK (stock >= 0),
    supplier_id BIGINT NOT NULL REFERENCES suppliers(supplier_id) DEFERRABLE INITIALLY IMMEDIATE
)`

	pgOrdersTable = `
CREATE TABLE IF NOT EXISTS orders (
    order_id     BIGINT PRIMARY KEY,
    customer_id  BIGINT NOT NULL REFERENCES customers(customer_id) DEFERRABLE INITIALLY IMMEDIATE,
    store_id     BIGINT REFERENCES stores(store_id) DEFERRABLE INITIALLY IMMEDIATE,
    order_date   DATE NOT NULL DEFAULT CURRENT_DATE,
    total_amount NUMERIC(10,2) NOT NULL CHECK (total_amount >= 0)
)`

	pgOrderItemsTable = `
CREATE TABLE IF NOT EXISTS order_items (
    order_item_id BIGINT PRIMARY KEY,
    order_id      BIGINT NOT NULL REFERENCES orders(order_id) DEFERRABLE INITIALLY IMMEDIATE,
    product_id    BIGINT NOT NULL REFERENCES products(product_id) DEFERRABLE INITIALLY IMMEDIATE,
    quantity      BIGINT NOT NULL CHECK (quantity > 0),
    price         NUMERIC(10,2) NOT NULL CHECK (price >= 0)
)`

	pgPaymentsTable = `
CREATE TABLE IF NOT EXISTS payments (
    payment_id     BIGINT PRIMARY KEY,
    order_id       BIGINT NOT NULL REFERENCES orders(order_id) DEFERRABLE INITIALLY IMMEDIATE,
    amount         NUMERIC(10,2) NOT NULL CHECK (amount >= 0),
    payment_method VARCHAR(50) NOT NULL,
    payment_date   DATE NOT NULL DEFAULT CURRENT_DATE
)`

	pgShipmentsTable = `
CREATE TABLE IF NOT EXISTS shipments (
    shipment_id   BIGINT PRIMARY KEY,
    product_id    BIGINT NOT NULL REFERENCES products(product_id) DEFERRABLE INITIALLY IMMEDIATE,
    quantity      BIGINT NOT NULL CHECK (quantity > 0),
    shipment_date DATE NOT NULL DEFAULT CURRENT_DATE
)`

	pgEmployeeAuditTable = `
CREATE TABLE IF NOT EXISTS employee_audit (
    audit_id    BIGSERIAL PRIMARY KEY,
    audit_ref   TEXT NOT NULL UNIQUE,
    employee_id BIGINT NOT NULL,
    name        VARCHAR(255) NOT NULL,
    role        VARCHAR(100) NOT NULL,
    store_id    BIGINT,
    salary      NUMERIC(10,2) NOT NULL,
    manager_id  BIGINT,
    hire_date   DATE,
    deleted_at  TEXT NOT NULL
)`

	pgTopSellingView = `
CREATE OR REPLACE VIEW top_selling_products AS
SELECT p.product_id, p.name, CAST(SUM(oi.quantity) AS BIGINT) AS total_sold
FROM products p
JOIN order_items oi ON oi.product_id = p.product_id
GROUP BY p.product_id, p.name`

	pgStoreRevenueView = `
CREATE OR REPLACE VIEW store_revenue AS
SELECT s.store_id, s.name, COALESCE(SUM(o.total_amount), 0) AS total_revenue
FROM stores s
LEFT JOIN orders o ON o.store_id = s.store_id
GROUP BY s.store_id, s.name`
)

// Indexes shared by both dialects.
const (
	indexProductName       = `CREATE INDEX IF NOT EXISTS idx_product_name ON products(name)`
	indexCustomerOrderDate = `CREATE INDEX IF NOT EXISTS idx_customer_order_date ON orders(customer_id, order_date)`
	indexOrderItemsProduct = `CREATE INDEX IF NOT EXISTS idx_order_items_product ON order_items(product_id)`
	indexOrderItemsOrder   = `CREATE INDEX IF NOT EXISTS idx_order_items_order ON order_items(order_id)`
	indexOrdersStore       = `CREATE INDEX IF NOT EXISTS idx_orders_store ON orders(store_id)`
	indexEmployeesManager  = `CREATE INDEX IF NOT EXISTS idx_employees_manager ON employees(manager_id)`
	indexAuditEmployee     = `CREATE INDEX IF NOT EXISTS idx_employee_audit_employee ON employee_audit(employee_id)`
)

var sqliteSchemaDDL = []string{
	sqliteStoresTable,
	sqliteEmployeesTable,
	sqliteCustomersTable,
	sqliteSuppliersTable,
	sqliteProductsTable,
	sqliteOrdersTable,
	sqliteOrderItemsTable,
	sqlitePaymentsTable,
	sqliteShipmentsTable,
	sqliteEmployeeAuditTable,
	sqliteTopSellingView,
	sqliteStoreRevenueView,
}

var pgSchemaDDL = []string{
	pgStoresTable,
	pgEmployeesTable,
	pgStoresManagerFK,
	pgCustomersTable,
	pgSuppliersTable,
	pgProductsTable,
	pgOrdersTable,
	pgOrderItemsTable,
	pgPaymentsTable,
	pgShipmentsTable,
	pgEmployeeAuditTable,
	pgTopSellingView,
	pgStoreRevenueView,
}

var indexDDL = []string{
	indexProductName,
	indexCustomerOrderDate,
	indexOrderItemsProduct,
	indexOrderItemsOrder,
	indexOrdersStore,
	indexEmployeesManager,
	indexAuditEmployee,
}
