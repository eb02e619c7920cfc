// Package main Checkout API
//
//	@title						Checkout API
//	@version					1.0
//	@description				Checkout and payment orchestration for baskets and orders.
//
//	@contact.name				Checkout Support
//	@contact.email				support@uniedit.io
//
//	@license.name				Proprietary
//
//	@host						localhost:8080
//	@BasePath					/api/v1
//
//	@securityDefinitions.apikey	BearerAuth
//	@in							header
//	@name						Authorization
//	@description				Bearer token authentication. Format: "Bearer {token}"
//
//	@tag.name					checkout
//	@tag.description			Place orders and track their payment states
//
//	@tag.name					payment-callbacks
//	@tag.description			Form posts and processor results for multi-step payment methods
//
//	@tag.name					orders
//	@tag.description			Order lookup and staff status changes
package main
