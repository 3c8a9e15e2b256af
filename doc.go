// Package auth provides multi tenant authentication and authorization
// primitives (password hashing, JWT issuance, organization membership) plus
// HTTP helpers for mounting the surface on a router.
//
// Authentication:
//   - Auther verifies email/password pairs through an IdentityProvider and
//     mints signed tokens. Unknown emails and wrong passwords collapse into
//     the same invalid credentials error so account existence never leaks,
//     and inactive accounts are only disclosed after credentials check out.
//
// Authorization:
//   - Authorizer gates named operations through a policy table mapping each
//     operation to the roles allowed to perform it, optionally requiring the
//     actor to belong to the target organization. Membership enforcement can
//     be toggled off process wide for single tenant deployments.
//
// Activity sinks:
//   - ActivitySink is a light-weight audit emitter used by Auther and the
//     organization service to describe login and organization lifecycle
//     events. Sinks run best-effort (errors are logged) so you can forward to
//     Redis or a queue without blocking authentication.
//
// Claims decoration:
//   - ClaimsDecorator is invoked before JWTs are signed. Decorators may enrich
//     extension fields such as metadata while protected claims (sub, iss, aud,
//     exp, etc.) remain immutable.
package auth
