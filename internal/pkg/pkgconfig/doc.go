// Package pkgconfig reads application settings.
//
// Callers depend on the Config interface; Viper backs it with a YAML file,
// registered defaults and environment overrides (ORDERITEM_STORE_DRIVER for
// "orderitem.store.driver").
package pkgconfig
