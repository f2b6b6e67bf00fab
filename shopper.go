package worldpay

import (
	"net"

	"github.com/google/uuid"
)

// ShopperSession carries the shopper metadata the gateway expects on order
// creation and 3DS finalization: it correlates the two legs of an
// authenticated order on the gateway side.
type ShopperSession struct {
	AcceptHeader string
	UserAgent    string
	SessionID    string
	IPAddress    string
}

func defaultShopperSession() ShopperSession {
	return ShopperSession{
		AcceptHeader: "application/json",
		UserAgent:    "worldpay-go/" + Version,
		SessionID:    uuid.NewString(),
		IPAddress:    localIPAddress(),
	}
}

// localIPAddress returns the host's first non-loopback IPv4 address, falling
// back to loopback when none is up.
func localIPAddress() string {
	addrs, err := net.InterfaceAddrs()
	if err != nil {
		return "127.0.0.1"
	}
	for _, addr := range addrs {
		ipNet, ok := addr.(*net.IPNet)
		if !ok || ipNet.IP.IsLoopback() {
			continue
		}
		if v4 := ipNet.IP.To4(); v4 != nil {
			return v4.String()
		}
	}
	return "127.0.0.1"
}
