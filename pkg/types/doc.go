// Package types defines the Ledger and Table interfaces, the retail entity
// types, report rows, relationship policies, and the error taxonomy shared
// by every ledger backend.
//
// Callers attach a Ledger to a backend, reach entity tables by name, and use
// the rule-bound operations (InsertOrderItem, DeleteEmployee) and the read
// projections (TopSellingProducts, StoreRevenue, EmployeeHierarchy) directly.
package types
