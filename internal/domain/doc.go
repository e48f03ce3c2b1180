// Package domain contains the core business entities of the task manager:
// users, their session tokens and the tasks they own, together with the
// validation rules and allow-listed update shapes for each. It does not
// depend on storage or transport.
package domain
