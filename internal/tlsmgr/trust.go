// Package tlsmgr builds the certificate pools used by outbound TLS.
package tlsmgr

import (
	"crypto/x509"
	"fmt"
	"os"
)

// LoadCARoots appends the PEM bundle at path to pool (or to the system pool
// when pool is nil). An empty path or a missing file leaves the pool as is.
func LoadCARoots(path string, pool *x509.CertPool) (*x509.CertPool, error) {
	if pool == nil {
		systemPool, err := x509.SystemCertPool()
		if err != nil || systemPool == nil {
			pool = x509.NewCertPool()
		} else {
			pool = systemPool
		}
	}
	if path == "" {
		return pool, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return pool, nil
		}
		return nil, err
	}
	if ok := pool.AppendCertsFromPEM(data); !ok {
		return nil, fmt.Errorf("failed to parse ca bundle %s", path)
	}
	return pool, nil
}
