package discovery_test

import (
	"net"
	"testing"

	"github.com/enbility/zeroconf/v3/mocks"
	"github.com/regmap-proto/regmap-go/pkg/discovery"
	"github.com/stretchr/testify/mock"
)

// testBrowserConfig wires the browser onto mocked sockets so tests
// never touch real network interfaces. Reads yield nothing; browses
// end by context cancellation.
func testBrowserConfig(t *testing.T) discovery.BrowserConfig {
	provider := mocks.NewMockInterfaceProvider(t)
	provider.EXPECT().MulticastInterfaces().Return([]net.Interface{
		{Index: 1, Name: "lo", Flags: net.FlagUp | net.FlagMulticast},
	}).Maybe()

	factory := mocks.NewMockConnectionFactory(t)
	factory.EXPECT().CreateIPv4Conn(mock.Anything).Return(quietPacketConn(t), nil).Maybe()
	factory.EXPECT().CreateIPv6Conn(mock.Anything).Return(quietPacketConn(t), nil).Maybe()

	return discovery.BrowserConfig{
		ConnectionFactory: factory,
		InterfaceProvider: provider,
	}
}

// quietPacketConn builds a mock socket that accepts everything and
// receives nothing.
func quietPacketConn(t *testing.T) *mocks.MockPacketConn {
	conn := mocks.NewMockPacketConn(t)
	conn.EXPECT().JoinGroup(mock.Anything, mock.Anything).Return(nil).Maybe()
	conn.EXPECT().LeaveGroup(mock.Anything, mock.Anything).Return(nil).Maybe()
	conn.EXPECT().WriteTo(mock.Anything, mock.Anything, mock.Anything).Return(0, nil).Maybe()
	conn.EXPECT().ReadFrom(mock.Anything).RunAndReturn(func([]byte) (int, int, net.Addr, error) {
		return 0, 0, nil, nil
	}).Maybe()
	conn.EXPECT().Close().Return(nil).Maybe()
	conn.EXPECT().SetMulticastTTL(mock.Anything).Return(nil).Maybe()
	conn.EXPECT().SetMulticastHopLimit(mock.Anything).Return(nil).Maybe()
	conn.EXPECT().SetMulticastInterface(mock.Anything).Return(nil).Maybe()
	return conn
}
