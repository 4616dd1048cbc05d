// Package careauth manages the authenticated session lifecycle for CareLoop
// platform clients: login, silent session restoration from persisted tokens,
// transparent refresh-token rotation, and logout.
//
// The package is the single owner of the access/refresh token pair. Consumers
// construct one [Manager] through [Builder.Build] at process start, call
// [Manager.Restore] exactly once, and afterwards read derived session state
// ([Manager.CurrentUser], [Manager.IsAuthenticated], role flags) or trigger
// the explicit [Manager.Login] and [Manager.Logout] transitions. Manager
// methods are safe for concurrent use.
//
// # Architecture boundaries
//
// careauth is the public surface. It exposes [Manager], [Builder], [Config],
// the error sentinels, and value types (UserProfile, SessionSnapshot,
// Event, MetricsSnapshot). Token persistence lives in the tokenstore
// subpackage behind the [tokenstore.Store] interface; the reference backend
// used by tests and the development server lives in authtest.
//
// # Session invariants
//
//   - CurrentUser is present if and only if the session state is
//     StateAuthenticated.
//   - The access and refresh tokens are written and cleared together, in
//     memory and in the token store; a half-written pair is never observable.
//   - Restoration runs at most once per Manager; Initialized never reports
//     true while a restoration attempt is still outstanding.
//   - At most one refresh is in flight; concurrent callers wait on the
//     existing attempt and share its outcome.
package careauth
