package server

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/tls"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"io"
	"log/slog"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeKeyPair(t *testing.T, dir string, serial int64, mtime time.Time) (string, string) {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	require.NoError(t, err)

	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: "turnact.test"},
		DNSNames:     []string{"turnact.test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	require.NoError(t, err)
	keyDER, err := x509.MarshalECPrivateKey(key)
	require.NoError(t, err)

	certFile := filepath.Join(dir, "tls.crt")
	keyFile := filepath.Join(dir, "tls.key")
	require.NoError(t, os.WriteFile(certFile, pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der}), 0o600))
	require.NoError(t, os.WriteFile(keyFile, pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: keyDER}), 0o600))
	require.NoError(t, os.Chtimes(certFile, mtime, mtime))
	require.NoError(t, os.Chtimes(keyFile, mtime, mtime))
	return certFile, keyFile
}

func servedSerial(t *testing.T, l *CertLoader) int64 {
	t.Helper()
	cert, err := l.GetCertificate(&tls.ClientHelloInfo{})
	require.NoError(t, err)
	leaf, err := x509.ParseCertificate(cert.Certificate[0])
	require.NoError(t, err)
	return leaf.SerialNumber.Int64()
}

func TestCertLoader(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	start := time.Now()
	certFile, keyFile := writeKeyPair(t, dir, 1, start.Add(-time.Minute))

	l, err := NewCertLoader(certFile, keyFile, logger)
	require.NoError(t, err)
	clock := start
	l.now = func() time.Time { return clock }

	assert.Equal(t, int64(1), servedSerial(t, l))

	writeKeyPair(t, dir, 2, start.Add(time.Hour))
	assert.Equal(t, int64(1), servedSerial(t, l), "files are not checked again within the interval")

	clock = clock.Add(2 * time.Minute)
	assert.Equal(t, int64(2), servedSerial(t, l))

	require.NoError(t, os.WriteFile(certFile, []byte("not a certificate"), 0o600))
	later := start.Add(2 * time.Hour)
	require.NoError(t, os.Chtimes(certFile, later, later))
	clock = clock.Add(2 * time.Minute)
	assert.Equal(t, int64(2), servedSerial(t, l), "a broken reload keeps the previous certificate")

	cfg := l.TLSConfig()
	assert.Equal(t, uint16(tls.VersionTLS12), cfg.MinVersion)
	assert.NotNil(t, cfg.GetCertificate)
}

func TestCertLoaderMissingFiles(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	dir := t.TempDir()
	_, err := NewCertLoader(filepath.Join(dir, "missing.crt"), filepath.Join(dir, "missing.key"), logger)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load key pair")
}
