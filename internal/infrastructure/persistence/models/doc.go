// Package models contains the GORM persistence models. Each model maps one
// domain entity to its table and carries ToDomain/FromDomain converters so
// repositories never leak gorm types into the domain layer.
package models
