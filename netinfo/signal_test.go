package netinfo_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"i4.energy/across/netmon/netinfo"
)

func TestParseRSRP(t *testing.T) {
	t.Run("all paths reported", func(t *testing.T) {
		reading, err := netinfo.ParseRSRP("+QRSRP: -95,-98,-102,-99,NR5G\r\nOK")
		require.NoError(t, err)
		require.NotNil(t, reading)

		assert.Equal(t, "NR5G", reading.System)
		for i, want := range []int{-95, -98, -102, -99} {
			require.NotNil(t, reading.Paths[i])
			assert.Equal(t, want, *reading.Paths[i])
		}
		require.NotNil(t, reading.Primary())
		assert.Equal(t, -95, *reading.Primary())
	})

	t.Run("sentinel paths become nil", func(t *testing.T) {
		reading, err := netinfo.ParseRSRP("+QRSRP: -32768,-98,-32768,-99,LTE\r\nOK")
		require.NoError(t, err)
		require.NotNil(t, reading)

		assert.Nil(t, reading.Paths[0])
		assert.Nil(t, reading.Paths[2])
		require.NotNil(t, reading.Paths[1])
		assert.Equal(t, -98, *reading.Paths[1])
		require.NotNil(t, reading.Primary(), "primary falls through to the first live path")
		assert.Equal(t, -98, *reading.Primary())
	})

	t.Run("missing line", func(t *testing.T) {
		_, err := netinfo.ParseRSRP("OK")
		var parseErr *netinfo.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}

func TestParseRSRQ(t *testing.T) {
	reading, err := netinfo.ParseRSRQ("+QRSRQ: -11,-12,-32768,-32768,NR5G\r\nOK")
	require.NoError(t, err)
	require.NotNil(t, reading)
	require.NotNil(t, reading.Paths[0])
	assert.Equal(t, -11, *reading.Paths[0])
	assert.Nil(t, reading.Paths[3])
}

func TestParseSINR(t *testing.T) {
	reading, err := netinfo.ParseSINR("+QSINR: 21,18,-32768,-32768,NR5G\r\nOK")
	require.NoError(t, err)
	require.NotNil(t, reading)
	require.NotNil(t, reading.Paths[1])
	assert.Equal(t, 18, *reading.Paths[1])
}

func TestParseCSQ(t *testing.T) {
	t.Run("regular reading", func(t *testing.T) {
		reading, err := netinfo.ParseCSQ("+CSQ: 21,3\r\nOK")
		require.NoError(t, err)
		require.NotNil(t, reading)
		require.NotNil(t, reading.RSSI)
		assert.Equal(t, 21, *reading.RSSI)
		require.NotNil(t, reading.BER)
		assert.Equal(t, 3, *reading.BER)
	})

	t.Run("99 sentinel means unknown", func(t *testing.T) {
		reading, err := netinfo.ParseCSQ("+CSQ: 99,99\r\nOK")
		require.NoError(t, err)
		require.NotNil(t, reading)
		assert.Nil(t, reading.RSSI)
		assert.Nil(t, reading.BER)
	})

	t.Run("mixed sentinel", func(t *testing.T) {
		reading, err := netinfo.ParseCSQ("+CSQ: 17,99\r\nOK")
		require.NoError(t, err)
		require.NotNil(t, reading.RSSI)
		assert.Equal(t, 17, *reading.RSSI)
		assert.Nil(t, reading.BER)
	})

	t.Run("code outside the documented ranges", func(t *testing.T) {
		_, err := netinfo.ParseCSQ("+CSQ: 45,2\r\nOK")
		var parseErr *netinfo.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})

	t.Run("missing line", func(t *testing.T) {
		_, err := netinfo.ParseCSQ("OK")
		var parseErr *netinfo.ParseError
		assert.ErrorAs(t, err, &parseErr)
	})
}
