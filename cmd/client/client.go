package main

import (
	"encoding/binary"
	"flag"
	"fmt"
	"log"
	"net"
	"os"
	"strings"
	"time"

	"github.com/serzhan-kenesbek/order-book/internal/book"
	gateway "github.com/serzhan-kenesbek/order-book/internal/net"
)

func main() {
	serverAddr := flag.String("server", "127.0.0.1:9001", "Address of the exchange gateway")
	action := flag.String("action", "place", "Action to perform: ['place', 'cancel']")

	// Order parameters
	symbol := flag.String("symbol", "AAPL", "Instrument symbol (max 4 chars)")
	sideStr := flag.String("side", "buy", "Order side: 'buy' or 'sell'")
	orderID := flag.Uint64("id", 0, "Client-assigned order id (compulsory, unique while live)")
	price := flag.Int64("price", 100, "Limit price in integer ticks")
	qty := flag.Int64("qty", 10, "Quantity")

	flag.Parse()

	if *orderID == 0 {
		fmt.Println("Error: -id is compulsory and must be positive.")
		flag.Usage()
		os.Exit(1)
	}

	conn, err := net.Dial("tcp", *serverAddr)
	if err != nil {
		log.Fatalf("Failed to connect to gateway at %s: %v", *serverAddr, err)
	}
	defer conn.Close()
	fmt.Printf("Connected to %s\n", *serverAddr)

	side := book.Bid
	if strings.ToLower(*sideStr) == "sell" {
		side = book.Ask
	}

	switch strings.ToLower(*action) {
	case "place":
		frame := gateway.EncodeNewOrder(gateway.NewOrderMessage{
			Symbol:   *symbol,
			Side:     side,
			OrderID:  *orderID,
			Price:    *price,
			Quantity: *qty,
		})
		if _, err := conn.Write(frame); err != nil {
			log.Fatalf("Failed to place order: %v", err)
		}
		fmt.Printf("-> Sent %s Order id=%d: %s %d @ %d\n",
			strings.ToUpper(*sideStr), *orderID, *symbol, *qty, *price)

	case "cancel":
		frame := gateway.EncodeCancelOrder(gateway.CancelOrderMessage{
			Symbol:  *symbol,
			OrderID: *orderID,
		})
		if _, err := conn.Write(frame); err != nil {
			log.Fatalf("Failed to send cancel request: %v", err)
		}
		fmt.Printf("-> Sent Cancel Request for id=%d\n", *orderID)

	default:
		log.Fatalf("Unknown action: %s", *action)
	}

	// Keep the session alive to receive execution reports; the
	// gateway drops idle connections, so send heartbeats.
	fmt.Println("\nListening for reports... (Press Ctrl+C to exit)")
	go heartbeat(conn)
	readReports(conn)
}

func heartbeat(conn net.Conn) {
	frame := []byte{0x00, 0x00}
	for {
		time.Sleep(10 * time.Second)
		if _, err := conn.Write(frame); err != nil {
			return
		}
	}
}

// readReports prints every report frame the gateway sends back.
func readReports(conn net.Conn) {
	buf := make([]byte, 4096)
	for {
		n, err := conn.Read(buf)
		if err != nil {
			log.Printf("Connection closed: %v", err)
			return
		}
		printReport(buf[:n])
	}
}

func printReport(frame []byte) {
	if len(frame) < 56 {
		log.Printf("Short report frame (%d bytes)", len(frame))
		return
	}

	typeOf := gateway.ReportType(frame[0])
	symbol := strings.TrimRight(string(frame[1:5]), " ")
	orderID := binary.BigEndian.Uint64(frame[5:13])
	counterparty := binary.BigEndian.Uint64(frame[13:21])
	price := int64(binary.BigEndian.Uint64(frame[21:29]))
	quantity := int64(binary.BigEndian.Uint64(frame[29:37]))
	remaining := int64(binary.BigEndian.Uint64(frame[37:45]))
	execIDLen := int(frame[53])
	errLen := int(binary.BigEndian.Uint16(frame[54:56]))

	switch typeOf {
	case gateway.AckReport:
		fmt.Printf("<- ACK %s id=%d remaining=%d\n", symbol, orderID, remaining)
	case gateway.RejectReport:
		errMsg := ""
		if 56+execIDLen+errLen <= len(frame) {
			errMsg = string(frame[56+execIDLen : 56+execIDLen+errLen])
		}
		fmt.Printf("<- REJECT %s id=%d: %s\n", symbol, orderID, errMsg)
	case gateway.ExecutionReport:
		fmt.Printf("<- FILL %s id=%d vs %d: %d @ %d (remaining %d)\n",
			symbol, orderID, counterparty, quantity, price, remaining)
	default:
		fmt.Printf("<- Unknown report type %d\n", typeOf)
	}
}
