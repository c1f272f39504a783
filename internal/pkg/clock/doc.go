// Package clock abstracts time.
//
// Code expiry and delivery timestamps all flow through Clocker, which lets
// tests pin the clock and advance it past a TTL without sleeping.
package clock
