// Package http provides HTTP handlers and middleware for the conference
// planner API.
//
// The router exposes the following endpoints:
//   - POST /auth/sessions: issues a session token. Body: {"email","password"}.
//     Response: {"token","expires_at","principal":{"user_id","is_admin"}} with the
//     token also surfaced via the `X-Session-Token` header and a `session_token`
//     cookie.
//   - DELETE /auth/sessions/current: revokes the current session token extracted
//     from the Authorization header or session cookie. Returns 204 No Content and
//     clears the cookie.
//   - GET /users, POST /users, GET /users/{id}, PUT /users/{id}, DELETE
//     /users/{id}: administrator controlled user management endpoints exchanging
//     the `userDTO` payload defined in user_handler.go.
//   - GET /conferences, GET /conferences/{id}: conference catalog endpoints.
//     Conference responses embed days, slots, rooms, session types and tracks.
//   - POST /conferences/{id}/days/{dayId}/slots: creates a slot; a slot the
//     validator rejects is returned with 422 and its error codes instead of being
//     stored. POST .../slots/validate runs the same checks without persisting,
//     POST .../slots/bulk expands a grid template into many slots, and PUT
//     and DELETE .../slots/{slotId} update or remove one slot.
//   - POST /conferences/{id}/days/{dayId}/copy: copies the day's slots onto
//     another day, or one room's slots onto another room, depending on the body.
//     Only slots the batch acceptor admits are created.
//   - GET /conferences/{id}/sessions: lists the conference's sessions;
//     `?eligible=true` narrows to sessions whose status permits placement.
//     GET /sessions/{id} fetches one and PATCH /sessions/{id}/status drives the
//     manual status transitions.
//   - GET /conferences/{id}/speakers, GET /conferences/{id}/speakers/{personId},
//     PUT /conferences/{id}/speakers/{personId}/availability: speaker roster and
//     availability blacklist management.
//   - GET /conferences/{id}/allocations, POST /conferences/{id}/allocations:
//     list and create session-to-slot assignments. DELETE /allocations/{id}
//     clears one assignment and POST /allocations/clear clears a batch
//     atomically. Assignments that would strand a speaker respond with 409 and a
//     `SPEAKER_CONFLICT` payload listing the speaker's remaining available time
//     ranges.
//   - POST /conferences/{id}/suggestions: computes advisory greedy placement
//     suggestions (optionally seeded for reproducibility). POST
//     /conferences/{id}/suggestions/apply commits a suggestion list, skipping
//     entries the live schedule no longer admits.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
