package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/rs/zerolog"

	"skoll/internal/common"
	"skoll/internal/config"
	"skoll/internal/engine"
)

func main() {
	ctx, stop := signal.NotifyContext(
		context.Background(),
		syscall.SIGTERM,
		syscall.SIGINT,
	)
	defer stop()
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cfg := config.Load()
	logger := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(cfg.LogLevel).
		With().Timestamp().Logger()

	eng := engine.New(cfg.EngineBuffer, logger)
	eng.Start(ctx)

	go console(cancel, eng, cfg.DepthLevels)

	// Block until quit or a signal, then wind the engine down.
	<-ctx.Done()
	if err := eng.Stop(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error().Err(err).Msg("engine exited with error")
	}
}

// console reads order commands from stdin and translates them into
// engine operations, printing fills and errors as they come back.
func console(cancel context.CancelFunc, eng *engine.Engine, depthLevels int) {
	defer cancel()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println("commands: limit <buy|sell> <price> <qty> | market <buy|sell> <qty> | cancel <id> | get <id> | book | quit")
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if strings.EqualFold(line, "quit") {
			return
		}
		if err := dispatch(eng, line, depthLevels); err != nil {
			fmt.Println("error:", err)
		}
	}
}

func dispatch(eng *engine.Engine, line string, depthLevels int) error {
	fields := strings.Fields(strings.ToLower(line))
	switch fields[0] {
	case "limit":
		if len(fields) != 4 {
			return fmt.Errorf("usage: limit <buy|sell> <price> <qty>")
		}
		side, err := parseSide(fields[1])
		if err != nil {
			return err
		}
		price, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("bad price %q", fields[2])
		}
		qty, err := strconv.ParseFloat(fields[3], 64)
		if err != nil {
			return fmt.Errorf("bad quantity %q", fields[3])
		}
		return place(eng, common.NewOrder(price, qty, side, common.LimitOrder))

	case "market":
		if len(fields) != 3 {
			return fmt.Errorf("usage: market <buy|sell> <qty>")
		}
		side, err := parseSide(fields[1])
		if err != nil {
			return err
		}
		qty, err := strconv.ParseFloat(fields[2], 64)
		if err != nil {
			return fmt.Errorf("bad quantity %q", fields[2])
		}
		return place(eng, common.NewOrder(0, qty, side, common.MarketOrder))

	case "cancel":
		id, err := parseID(fields)
		if err != nil {
			return err
		}
		order, err := eng.Cancel(id)
		if err != nil {
			return err
		}
		fmt.Println("cancelled:", order)
		return nil

	case "get":
		id, err := parseID(fields)
		if err != nil {
			return err
		}
		order, err := eng.Get(id)
		if err != nil {
			return err
		}
		fmt.Println(order)
		return nil

	case "book":
		return printBook(eng, depthLevels)

	default:
		return fmt.Errorf("unknown command %q", fields[0])
	}
}

func place(eng *engine.Engine, order *common.Order) error {
	trades, err := eng.Place(order)
	for _, trade := range trades {
		fmt.Println(trade)
	}
	if err != nil {
		return err
	}
	fmt.Printf("order %d %s\n", order.ID, order.Status)
	return nil
}

func printBook(eng *engine.Engine, depthLevels int) error {
	asks, err := eng.Depth(common.Sell, depthLevels)
	if err != nil {
		return err
	}
	bids, err := eng.Depth(common.Buy, depthLevels)
	if err != nil {
		return err
	}

	// Asks print worst first so the spread sits in the middle.
	for i := len(asks) - 1; i >= 0; i-- {
		fmt.Printf("  ASK %10.4f x %-10g (%d orders)\n", asks[i].Price, asks[i].Quantity, asks[i].Orders)
	}
	fmt.Println("  ----------")
	for _, level := range bids {
		fmt.Printf("  BID %10.4f x %-10g (%d orders)\n", level.Price, level.Quantity, level.Orders)
	}
	return nil
}

func parseSide(token string) (common.Side, error) {
	switch token {
	case "buy":
		return common.Buy, nil
	case "sell":
		return common.Sell, nil
	default:
		return 0, fmt.Errorf("side must be 'buy' or 'sell', got %q", token)
	}
}

func parseID(fields []string) (uint64, error) {
	if len(fields) != 2 {
		return 0, fmt.Errorf("usage: %s <id>", fields[0])
	}
	id, err := strconv.ParseUint(fields[1], 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad order id %q", fields[1])
	}
	return id, nil
}
