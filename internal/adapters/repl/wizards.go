package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"warehouse-backend/internal/adapters/cli"
	"warehouse-backend/internal/app"
	"warehouse-backend/internal/core"
)

// handleNewOrder runs an interactive order entry session.
// args may carry the warehouse and user ids; missing ones are prompted for.
func handleNewOrder(ctx context.Context, reader *bufio.Reader, out io.Writer, svc app.ApplicationService, args []string) {
	var req core.PlaceOrderRequest
	var ok bool
	if req.WarehouseID, ok = idArg(reader, out, args, 0, "Warehouse id: "); !ok {
		return
	}
	if req.UserID, ok = idArg(reader, out, args, 1, "User id: "); !ok {
		return
	}

	fmt.Fprintf(out, "Ordering from warehouse %d for user %d\n", req.WarehouseID, req.UserID)
	fmt.Fprintln(out, "Enter order lines. Type 'done' when finished, 'cancel' to abort.")
	fmt.Fprintln(out, "Format per line: <product-id> <quantity>")
	fmt.Fprintln(out, "  Example: 3 10")

	lineNum := 1
	for {
		fmt.Fprintf(out, "  Line %d: ", lineNum)
		raw, err := reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
		if strings.EqualFold(raw, "cancel") || (raw == "" && err != nil) {
			fmt.Fprintln(out, "Order entry cancelled.")
			return
		}
		if strings.EqualFold(raw, "done") {
			break
		}
		if raw == "" {
			continue
		}

		parts := strings.Fields(raw)
		if len(parts) != 2 {
			fmt.Fprintln(out, "  Invalid format. Use: <product-id> <quantity>")
			continue
		}
		productID, err := strconv.ParseInt(parts[0], 10, 64)
		if err != nil || productID <= 0 {
			fmt.Fprintln(out, "  Invalid product id.")
			continue
		}
		qty, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil || qty <= 0 {
			fmt.Fprintln(out, "  Invalid quantity.")
			continue
		}
		req.Lines = append(req.Lines, core.OrderLineRequest{ProductID: productID, Quantity: qty})
		lineNum++
	}

	if len(req.Lines) == 0 {
		fmt.Fprintln(out, "No lines entered. Order not placed.")
		return
	}

	order, err := svc.PlaceOrder(ctx, req)
	if err != nil {
		fmt.Fprintf(out, "Error placing order: %v\n", err)
		return
	}
	fmt.Fprintf(out, "\nOrder placed (ID: %d, Status: %s)\n", order.ID, order.StatusName)
	cli.PrintOrder(out, order)
}

// idArg reads args[i] as an id, prompting when it is absent.
func idArg(reader *bufio.Reader, out io.Writer, args []string, i int, prompt string) (int64, bool) {
	raw := ""
	if i < len(args) {
		raw = args[i]
	} else {
		fmt.Fprint(out, prompt)
		raw, _ = reader.ReadString('\n')
		raw = strings.TrimSpace(raw)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fmt.Fprintf(out, "Invalid id %q.\n", raw)
		return 0, false
	}
	return id, true
}
