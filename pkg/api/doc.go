// Package api defines the request and response messages of the famfund RPC
// services. Messages travel as JSON over the Connect protocol; see
// package apiconnect for the service definitions.
//
// Amounts are integers in minor currency units. Dates are Unix seconds.
package api
