package resilience

import "testing"

func TestTimeoutsForKnownClass(t *testing.T) {
	timeouts := TimeoutsFor(ClassDownload)
	if timeouts.Connect <= 0 || timeouts.Overall <= 0 {
		t.Fatalf("expected positive connect and overall timeouts, got %+v", timeouts)
	}
	if timeouts.Connect >= timeouts.Overall {
		t.Fatalf("expected connect timeout to be shorter than overall, got %+v", timeouts)
	}
}

func TestTimeoutsForUnknownClassFallsBackToAPI(t *testing.T) {
	timeouts := TimeoutsFor(OperationClass("nonexistent"))
	if timeouts != timeoutTable[ClassAPI] {
		t.Fatalf("expected fallback to api class timeouts, got %+v", timeouts)
	}
}

func TestNewTransportUsesClassConnectTimeout(t *testing.T) {
	transport := NewTransport(ClassHealth)
	if transport.DialContext == nil {
		t.Fatal("expected DialContext to be set")
	}
}
