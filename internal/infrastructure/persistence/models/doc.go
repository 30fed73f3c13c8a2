// Package models contains GORM persistence models that map to database tables.
// Domain types stay free of ORM tags; each model converts to and from its
// domain counterpart with ToDomain / FromDomain.
package models

// All returns every model, in dependency order, for AutoMigrate in tests and
// local sqlite setups. Production schemas come from migrations/.
func All() []any {
	return []any{
		&ConnectionModel{},
		&OrderModel{},
		&OrderLineModel{},
		&ProductModel{},
		&InsightModel{},
		&ReallocationModel{},
	}
}
