// Package devbackend serves the backend catalog API over the SQLite repositories
// so the scheduler can run locally and its client can be exercised end to end.
//
// Routes:
//   - GET /api/employee/all: every employee. GET /api/employee?page=&limit=&search=:
//     one page as {"data","total","page","limit"}.
//   - POST /api/employee, PUT /api/employee/{id}, DELETE /api/employee/{id}. The write
//     body carries department ids and a work_schedule object; reads serve department
//     names and work_schedule as a JSON-encoded string.
//   - GET /api/employees/{username}: one employee by login handle.
//   - GET/POST /api/departments, PUT/DELETE /api/departments/{id}.
//   - GET/POST /api/service-orders, GET/PUT/DELETE /api/service-orders/{id}. Updates
//     replace the whole assignment list.
//   - POST /api/auth/login: {"username","password"} checked against the stored hash.
//
// Errors are answered as {"message": "..."} with 400, 401, 404, 409 or 422.
package devbackend
