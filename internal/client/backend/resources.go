package backend

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/example/service-order-scheduler/internal/scheduler"
)

// ListEmployees fetches every employee.
func (c *Client) ListEmployees(ctx context.Context) ([]scheduler.Employee, error) {
	body, err := c.do(ctx, "list_employees", http.MethodGet, "/api/employee/all", nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeCollection[employeeDTO](body)
	if err != nil {
		return nil, fmt.Errorf("decode employees: %w", err)
	}
	employees := make([]scheduler.Employee, 0, len(items))
	for _, item := range items {
		employees = append(employees, item.toEmployee())
	}
	return employees, nil
}

// GetEmployeeByUsername fetches one employee by login handle.
func (c *Client) GetEmployeeByUsername(ctx context.Context, username string) (scheduler.Employee, error) {
	body, err := c.do(ctx, "get_employee_by_username", http.MethodGet, "/api/employees/"+url.PathEscape(username), nil)
	if err != nil {
		return scheduler.Employee{}, err
	}
	dto, err := decodeEntity[employeeDTO](body)
	if err != nil {
		return scheduler.Employee{}, fmt.Errorf("decode employee: %w", err)
	}
	return dto.toEmployee(), nil
}

// CreateEmployee creates an employee and returns the stored entity.
func (c *Client) CreateEmployee(ctx context.Context, input EmployeeInput) (scheduler.Employee, error) {
	body, err := c.do(ctx, "create_employee", http.MethodPost, "/api/employee", input)
	if err != nil {
		return scheduler.Employee{}, err
	}
	return decodeEmployeeWrite(body)
}

// UpdateEmployee replaces an employee's attributes.
func (c *Client) UpdateEmployee(ctx context.Context, id int, input EmployeeInput) (scheduler.Employee, error) {
	body, err := c.do(ctx, "update_employee", http.MethodPut, fmt.Sprintf("/api/employee/%d", id), input)
	if err != nil {
		return scheduler.Employee{}, err
	}
	return decodeEmployeeWrite(body)
}

// DeleteEmployee removes an employee. Any 2xx answer is success.
func (c *Client) DeleteEmployee(ctx context.Context, id int) error {
	_, err := c.do(ctx, "delete_employee", http.MethodDelete, fmt.Sprintf("/api/employee/%d", id), nil)
	return err
}

func decodeEmployeeWrite(body []byte) (scheduler.Employee, error) {
	dto, err := decodeWritten[employeeDTO](body)
	if err != nil {
		return scheduler.Employee{}, err
	}
	if dto.ID == 0 {
		return scheduler.Employee{}, ErrEmptyResponse
	}
	return dto.toEmployee(), nil
}

// ListDepartments fetches every department.
func (c *Client) ListDepartments(ctx context.Context) ([]scheduler.Department, error) {
	body, err := c.do(ctx, "list_departments", http.MethodGet, "/api/departments", nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeCollection[departmentDTO](body)
	if err != nil {
		return nil, fmt.Errorf("decode departments: %w", err)
	}
	departments := make([]scheduler.Department, 0, len(items))
	for _, item := range items {
		departments = append(departments, item.toDepartment())
	}
	return departments, nil
}

// CreateDepartment creates a department.
func (c *Client) CreateDepartment(ctx context.Context, input DepartmentInput) (scheduler.Department, error) {
	body, err := c.do(ctx, "create_department", http.MethodPost, "/api/departments", input)
	if err != nil {
		return scheduler.Department{}, err
	}
	return decodeDepartmentWrite(body)
}

// UpdateDepartment renames a department.
func (c *Client) UpdateDepartment(ctx context.Context, id int, input DepartmentInput) (scheduler.Department, error) {
	body, err := c.do(ctx, "update_department", http.MethodPut, fmt.Sprintf("/api/departments/%d", id), input)
	if err != nil {
		return scheduler.Department{}, err
	}
	return decodeDepartmentWrite(body)
}

// DeleteDepartment removes a department.
func (c *Client) DeleteDepartment(ctx context.Context, id int) error {
	_, err := c.do(ctx, "delete_department", http.MethodDelete, fmt.Sprintf("/api/departments/%d", id), nil)
	return err
}

func decodeDepartmentWrite(body []byte) (scheduler.Department, error) {
	dto, err := decodeWritten[departmentDTO](body)
	if err != nil {
		return scheduler.Department{}, err
	}
	if dto.ID == 0 {
		return scheduler.Department{}, ErrEmptyResponse
	}
	return dto.toDepartment(), nil
}

// ListServiceOrders fetches every service order with its assignments.
func (c *Client) ListServiceOrders(ctx context.Context) ([]scheduler.ServiceOrder, error) {
	body, err := c.do(ctx, "list_service_orders", http.MethodGet, "/api/service-orders", nil)
	if err != nil {
		return nil, err
	}
	items, err := decodeCollection[serviceOrderDTO](body)
	if err != nil {
		return nil, fmt.Errorf("decode service orders: %w", err)
	}
	orders := make([]scheduler.ServiceOrder, 0, len(items))
	for _, item := range items {
		orders = append(orders, item.toServiceOrder())
	}
	return orders, nil
}

// CreateServiceOrder creates a service order.
func (c *Client) CreateServiceOrder(ctx context.Context, input ServiceOrderInput) (scheduler.ServiceOrder, error) {
	body, err := c.do(ctx, "create_service_order", http.MethodPost, "/api/service-orders", input)
	if err != nil {
		return scheduler.ServiceOrder{}, err
	}
	return decodeServiceOrderWrite(body)
}

// UpdateServiceOrder replaces the order's service days and its complete assignment list.
func (c *Client) UpdateServiceOrder(ctx context.Context, id int, input ServiceOrderInput) (scheduler.ServiceOrder, error) {
	body, err := c.do(ctx, "update_service_order", http.MethodPut, fmt.Sprintf("/api/service-orders/%d", id), input)
	if err != nil {
		return scheduler.ServiceOrder{}, err
	}
	return decodeServiceOrderWrite(body)
}

// DeleteServiceOrder removes a service order. No response body is required.
func (c *Client) DeleteServiceOrder(ctx context.Context, id int) error {
	_, err := c.do(ctx, "delete_service_order", http.MethodDelete, fmt.Sprintf("/api/service-orders/%d", id), nil)
	return err
}

func decodeServiceOrderWrite(body []byte) (scheduler.ServiceOrder, error) {
	dto, err := decodeWritten[serviceOrderDTO](body)
	if err != nil {
		return scheduler.ServiceOrder{}, err
	}
	if dto.ID == 0 {
		return scheduler.ServiceOrder{}, ErrEmptyResponse
	}
	return dto.toServiceOrder(), nil
}

// Login checks collaborator credentials against the backend.
func (c *Client) Login(ctx context.Context, username, password string) error {
	_, err := c.do(ctx, "login", http.MethodPost, "/api/auth/login", credentialsDTO{Username: username, Password: password})
	return err
}
