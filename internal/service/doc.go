// Package service contains the application use cases: identity and session
// management in UserService, owner-scoped task management in TaskService.
//
// Services depend on the store interfaces, a store.Transactor for
// multi-step writes, and the auth primitives. They never see HTTP or SQL.
//
// Error handling:
//   - domain validation errors and store sentinels (ErrTaskNotFound,
//     ErrEmailExists, ...) are returned as they are
//   - ErrInvalidCredentials covers every login failure
//   - anything unexpected is wrapped in a ServiceError
package service
