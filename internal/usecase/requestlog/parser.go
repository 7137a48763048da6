package requestlog

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
	"github.com/ajainuary/rusty-orderbook/pkg/errors"
)

// Request log line grammar:
//
//	[<RFC2822 timestamp>] <order_id:u64> <CREATE|REPLACE|CANCEL> "<content>"
//
// with content one of
//
//	LIMIT_ORDER_BUY <price:uint> <quantity:uint>
//	LIMIT_ORDER_SELL <price:uint> <quantity:uint>
//	EMPTY
//
// EMPTY is only meaningful on CANCEL lines; a CREATE or REPLACE carrying it
// is rejected here so the matching engine only ever sees buy or sell content.
var lineRegexp = regexp.MustCompile(`^\[(.*?)\] ([0-9]+) (\S+) "(.*?)"$`)

// ParseLine parses a single request log line into a validated Request.
func ParseLine(line string) (*orderv1.Request, error) {
	captures := lineRegexp.FindStringSubmatch(line)
	if captures == nil {
		return nil, parseError(fmt.Sprintf("malformed request line: %q", line), "line")
	}

	timestamp, err := parseTimestamp(captures[1])
	if err != nil {
		return nil, err
	}

	orderID, err := strconv.ParseUint(captures[2], 10, 64)
	if err != nil {
		return nil, parseError(fmt.Sprintf("failed to parse order id %q", captures[2]), "orderID")
	}

	requestType, err := parseRequestType(captures[3])
	if err != nil {
		return nil, err
	}

	content, empty, err := parseContent(captures[4])
	if err != nil {
		return nil, err
	}

	if empty && requestType != orderv1.RequestTypeCancel {
		return nil, parseError(fmt.Sprintf("%s request carries no executable content", requestType), "content")
	}

	return &orderv1.Request{
		Timestamp: timestamp,
		OrderID:   orderID,
		Type:      requestType,
		Content:   content,
	}, nil
}

func parseTimestamp(value string) (time.Time, error) {
	for _, layout := range []string{time.RFC1123, time.RFC1123Z} {
		if timestamp, err := time.Parse(layout, value); err == nil {
			return timestamp, nil
		}
	}
	return time.Time{}, parseError(fmt.Sprintf("failed to parse timestamp %q as an rfc2822 date", value), "timestamp")
}

func parseRequestType(value string) (orderv1.RequestType, error) {
	switch value {
	case "CREATE":
		return orderv1.RequestTypeCreate, nil
	case "REPLACE":
		return orderv1.RequestTypeReplace, nil
	case "CANCEL":
		return orderv1.RequestTypeCancel, nil
	default:
		return "", parseError(fmt.Sprintf("unknown request type %q", value), "type")
	}
}

func parseContent(value string) (orderv1.OrderContent, bool, error) {
	if value == "EMPTY" {
		return orderv1.OrderContent{}, true, nil
	}

	fields := strings.Fields(value)
	if len(fields) != 3 {
		return orderv1.OrderContent{}, false, parseError(fmt.Sprintf("malformed order content %q", value), "content")
	}

	var side orderv1.Side
	switch fields[0] {
	case "LIMIT_ORDER_BUY":
		side = orderv1.SideBuy
	case "LIMIT_ORDER_SELL":
		side = orderv1.SideSell
	default:
		return orderv1.OrderContent{}, false, parseError(fmt.Sprintf("unknown order type %q", fields[0]), "content")
	}

	price, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return orderv1.OrderContent{}, false, parseError(fmt.Sprintf("failed to parse price %q", fields[1]), "price")
	}

	quantity, err := strconv.ParseUint(fields[2], 10, 64)
	if err != nil {
		return orderv1.OrderContent{}, false, parseError(fmt.Sprintf("failed to parse quantity %q", fields[2]), "quantity")
	}
	if quantity == 0 {
		return orderv1.OrderContent{}, false, parseError("quantity must be positive", "quantity")
	}

	return orderv1.OrderContent{
		Side:     side,
		Price:    price,
		Quantity: quantity,
	}, false, nil
}

func parseError(message, field string) error {
	return errors.NewErrorDetails(message, string(errors.RequestParseError), field)
}
