package render

import (
	"fmt"
	"io"
	"strings"

	orderv1 "github.com/ajainuary/rusty-orderbook/internal/domain/order/v1"
	snapshotv1 "github.com/ajainuary/rusty-orderbook/internal/domain/snapshot/v1"
)

// Render writes a human-readable view of a book snapshot: one block per
// price level with its queued orders in time priority, stale ids shown as
// cancelled, followed by the best price on each side.
func Render(w io.Writer, snapshot *snapshotv1.Snapshot) error {
	for _, level := range snapshot.Levels {
		if _, err := fmt.Fprintf(w, "%s@%d\n", sideLabel(level.Side), level.Price); err != nil {
			return err
		}
		for _, order := range level.Orders {
			if order.Cancelled {
				if _, err := fmt.Fprintf(w, "  %d: cancelled\n", order.OrderID); err != nil {
					return err
				}
				continue
			}
			if _, err := fmt.Fprintf(w, "  %d: %d\n", order.OrderID, order.Quantity); err != nil {
				return err
			}
		}
	}

	if snapshot.BestBid != nil {
		if _, err := fmt.Fprintf(w, "Best bid: %d\n", *snapshot.BestBid); err != nil {
			return err
		}
	}
	if snapshot.BestAsk != nil {
		if _, err := fmt.Fprintf(w, "Best ask: %d\n", *snapshot.BestAsk); err != nil {
			return err
		}
	}

	return nil
}

// RenderString renders a snapshot into a string.
func RenderString(snapshot *snapshotv1.Snapshot) string {
	var sb strings.Builder
	_ = Render(&sb, snapshot)
	return sb.String()
}

func sideLabel(side orderv1.Side) string {
	if side == orderv1.SideBuy {
		return "Bid"
	}
	return "Ask"
}
