package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"warehouse-backend/internal/app"
	"warehouse-backend/internal/core"
)

const usage = `Usage:
  app list <entity> [key=value ...]     list rows (page, page_size, include_archived, filters)
  app get <entity> <id>                 show one active row
  app orders [key=value ...]            list orders
  app order <id>                        show one order with its lines
  app place                             place the order read as JSON from stdin
  app status <order-id> <status-id>     move an order to another status
  app assign <order-id> [employee-id]   assign an employee, or clear with no id
  app archive <entity> <id>             archive a row
  app restore <entity> <id>             restore an archived row
  app stock [key=value ...]             list stock rows
  app schema <name>                     print a request schema
Entities: `

// Run executes a one-shot CLI command. args is os.Args[1:]; the first
// element is the subcommand name. Results are written to out as JSON.
func Run(ctx context.Context, svc app.ApplicationService, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return usageError(svc, "missing command")
	}

	switch args[0] {
	case "list", "ls":
		if len(args) < 2 {
			return usageError(svc, "list needs an entity")
		}
		return list(ctx, svc, args[1], args[2:], out)

	case "get":
		if len(args) < 3 {
			return usageError(svc, "get needs an entity and an id")
		}
		e, err := svc.Entity(args[1])
		if err != nil {
			return err
		}
		id, err := parseID(args[2])
		if err != nil {
			return err
		}
		row, err := e.Get(ctx, id, false)
		if err != nil {
			return err
		}
		return printJSON(out, row)

	case "orders":
		return list(ctx, svc, "orders", args[1:], out)

	case "order":
		if len(args) < 2 {
			return usageError(svc, "order needs an id")
		}
		id, err := parseID(args[1])
		if err != nil {
			return err
		}
		e, err := svc.Entity("orders")
		if err != nil {
			return err
		}
		row, err := e.Get(ctx, id, true)
		if err != nil {
			return err
		}
		summary, ok := row.(*core.OrderSummary)
		if !ok {
			return printJSON(out, row)
		}
		PrintOrder(out, summary)
		return nil

	case "place":
		var req core.PlaceOrderRequest
		dec := json.NewDecoder(in)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&req); err != nil {
			return fmt.Errorf("invalid JSON: %w", err)
		}
		order, err := svc.PlaceOrder(ctx, req)
		if err != nil {
			return err
		}
		PrintOrder(out, order)
		return nil

	case "status":
		if len(args) < 3 {
			return usageError(svc, "status needs an order id and a status id")
		}
		orderID, err := parseID(args[1])
		if err != nil {
			return err
		}
		statusID, err := parseID(args[2])
		if err != nil {
			return err
		}
		order, err := svc.UpdateOrderStatus(ctx, orderID, app.UpdateStatusRequest{StatusID: statusID})
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Order %d is now %s.\n", order.ID, order.StatusName)
		return nil

	case "assign":
		if len(args) < 2 {
			return usageError(svc, "assign needs an order id")
		}
		orderID, err := parseID(args[1])
		if err != nil {
			return err
		}
		var req app.AssignEmployeeRequest
		if len(args) > 2 {
			employeeID, err := parseID(args[2])
			if err != nil {
				return err
			}
			req.EmployeeID = &employeeID
		}
		order, err := svc.AssignEmployee(ctx, orderID, req)
		if err != nil {
			return err
		}
		if order.EmployeeID == nil {
			fmt.Fprintf(out, "Order %d is unassigned.\n", order.ID)
		} else {
			fmt.Fprintf(out, "Order %d is assigned to %s.\n", order.ID, order.EmployeeName)
		}
		return nil

	case "archive", "restore":
		if len(args) < 3 {
			return usageError(svc, args[0]+" needs an entity and an id")
		}
		e, err := svc.Entity(args[1])
		if err != nil {
			return err
		}
		id, err := parseID(args[2])
		if err != nil {
			return err
		}
		op := e.Archive
		if args[0] == "restore" {
			op = e.Restore
		}
		found, err := op(ctx, id)
		if err != nil {
			return err
		}
		if !found {
			return core.NotFound(e.Name(), id)
		}
		fmt.Fprintf(out, "%s %d: %sd.\n", e.Name(), id, args[0])
		return nil

	case "stock":
		return list(ctx, svc, "stock", args[1:], out)

	case "schema":
		if len(args) < 2 {
			return usageError(svc, "schema needs a name: "+strings.Join(svc.SchemaNames(), ", "))
		}
		sc, err := svc.Schema(args[1])
		if err != nil {
			return err
		}
		return printJSON(out, sc)

	case "help", "-h", "--help":
		fmt.Fprintln(out, usage+strings.Join(svc.EntityNames(), ", "))
		return nil
	}
	return usageError(svc, "unknown command: "+args[0])
}

func list(ctx context.Context, svc app.ApplicationService, entity string, kv []string, out io.Writer) error {
	e, err := svc.Entity(entity)
	if err != nil {
		return err
	}
	params, err := parseParams(kv)
	if err != nil {
		return err
	}
	res, err := e.List(ctx, params)
	if err != nil {
		return err
	}
	return printJSON(out, res)
}

// parseParams reads key=value pairs into ListParams.
func parseParams(kv []string) (app.ListParams, error) {
	params := app.ListParams{}
	for _, pair := range kv {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || k == "" {
			return nil, core.Validation(pair, "expected key=value, got %q", pair)
		}
		params[k] = v
	}
	return params, nil
}

func parseID(s string) (int64, error) {
	id, err := strconv.ParseInt(s, 10, 64)
	if err != nil || id <= 0 {
		return 0, core.Validation("id", "invalid id %q", s)
	}
	return id, nil
}

func usageError(svc app.ApplicationService, msg string) error {
	return fmt.Errorf("%s\n\n%s%s", msg, usage, strings.Join(svc.EntityNames(), ", "))
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintOrder renders an order and its lines as a fixed-width table.
func PrintOrder(out io.Writer, o *core.OrderSummary) {
	fmt.Fprintln(out)
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  Order %-6d %s\n", o.ID, o.StatusName)
	fmt.Fprintf(out, "  User      : %s\n", o.UserLogin)
	fmt.Fprintf(out, "  Warehouse : %s\n", o.WarehouseAddress)
	if o.EmployeeName != "" {
		fmt.Fprintf(out, "  Employee  : %s\n", o.EmployeeName)
	}
	if o.Archived {
		fmt.Fprintln(out, "  (archived)")
	}
	fmt.Fprintln(out, strings.Repeat("=", 62))
	fmt.Fprintf(out, "  %-28s %6s %12s %12s\n", "PRODUCT", "QTY", "PRICE", "TOTAL")
	fmt.Fprintln(out, strings.Repeat("-", 62))
	for _, l := range o.Lines {
		fmt.Fprintf(out, "  %-28s %6d %12s %12s\n", l.ProductName, l.Quantity, l.UnitPrice.StringFixed(2), l.LineTotal.StringFixed(2))
	}
	fmt.Fprintln(out, strings.Repeat("-", 62))
	fmt.Fprintf(out, "  %-48s %12s\n", "TOTAL", o.TotalPrice.StringFixed(2))
	fmt.Fprintln(out, strings.Repeat("=", 62))
}
