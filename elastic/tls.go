package elastic

import (
	"crypto/tls"
	"crypto/x509"
	"io/ioutil"

	"github.com/pkg/errors"
)

// TLSConfig describes how connections to the cluster are secured.
type TLSConfig struct {
	// CertificatePath contains the path to a client certificate (.crt or .pem file)
	CertificatePath string `json:"certificate" help:"Path to client certificate file."`
	// CertificateKeyPath contains the path to the client certificate key (.key file)
	CertificateKeyPath string `json:"key" help:"Path to client certificate key file."`
	// CACertPath is the path to a CA certificate (.crt or .pem file)
	CACertPath string `json:"ca-certificate" help:"Path to CA certificate file."`
	// SkipVerify disables verification of server certificates. It is
	// ignored when CACertPath is set.
	SkipVerify bool `json:"skip-verify" help:"Disables verification of server certificates."`
}

// GetTLSConfig builds a *tls.Config for talking to the cluster.
func GetTLSConfig(tlsConfig *TLSConfig) (*tls.Config, error) {
	if tlsConfig == nil {
		return nil, nil
	}
	cfg := &tls.Config{
		InsecureSkipVerify: tlsConfig.SkipVerify && tlsConfig.CACertPath == "", // nolint: gosec
		MinVersion:         tls.VersionTLS12,
	}
	if (tlsConfig.CertificatePath == "") != (tlsConfig.CertificateKeyPath == "") {
		return nil, errors.New("client certificate and key must be given together")
	}
	if tlsConfig.CertificatePath != "" {
		cert, err := tls.LoadX509KeyPair(tlsConfig.CertificatePath, tlsConfig.CertificateKeyPath)
		if err != nil {
			return nil, errors.Wrap(err, "loading keypair")
		}
		cfg.Certificates = []tls.Certificate{cert}
	}
	if tlsConfig.CACertPath != "" {
		b, err := ioutil.ReadFile(tlsConfig.CACertPath)
		if err != nil {
			return nil, errors.Wrap(err, "loading tls ca key")
		}
		certPool := x509.NewCertPool()
		if ok := certPool.AppendCertsFromPEM(b); !ok {
			return nil, errors.New("error parsing CA certificate")
		}
		cfg.RootCAs = certPool
	}
	return cfg, nil
}
