// Package http exposes the weekly board, the availability roster and the catalog
// maintenance endpoints over HTTP.
//
// The router exposes the following endpoints:
//   - POST /sessions/admin {"email","password"} and POST /sessions/collaborator
//     {"username","password"}: issue a session. Response:
//     {"token","expires_at","principal":{"user_id","role","employee_id","display_name"}}
//     with the token also surfaced via the `X-Session-Token` header and a
//     `session_token` cookie.
//   - GET /sessions/current returns the principal; DELETE /sessions/current revokes the
//     token taken from the Authorization header or the session cookie.
//   - GET /board/week?department={id}&reference=YYYY-MM-DD: seven columns starting on
//     Sunday. GET /board/days/{0..6|dom..sab}: one column. GET /board/week.xlsx: the
//     same week as a workbook.
//   - GET /availability (admin): one row per employee with the derived status.
//   - GET /me/service-orders: the orders assigning the caller.
//   - GET/POST /employees, PUT/DELETE /employees/{id}; GET/POST /departments,
//     PUT/DELETE /departments/{id}; GET/POST /service-orders,
//     GET/PUT/DELETE /service-orders/{id}; POST /snapshot/refresh: administrator
//     catalog maintenance.
//   - GET /healthz and GET /metrics are unauthenticated.
//
// Errors are answered as {"error_code","message","errors"} with Portuguese messages.
package http
