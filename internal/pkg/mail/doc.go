// Package mail defines the contract for sending email.
//
// Use cases depend on the Mail interface and Message payload only; the SMTP
// implementation lives alongside. Passcode emails are the sole traffic in
// this system, so the surface stays deliberately small.
package mail
