package mempool

import (
	"testing"

	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
)

func testTransaction(payload byte) *externalapi.DomainTransaction {
	return &externalapi.DomainTransaction{
		Outputs: []*externalapi.DomainTransactionOutput{{Value: 1, PublicKey: []byte{1}}},
		Payload: []byte{payload},
	}
}

func TestTransactionPool(t *testing.T) {
	pool := New()
	tx1, tx2, tx3 := testTransaction(1), testTransaction(2), testTransaction(3)

	for _, tx := range []*externalapi.DomainTransaction{tx2, tx1, tx3} {
		if !pool.AddTransaction(tx) {
			t.Fatalf("TestTransactionPool: AddTransaction of a new transaction returned false")
		}
	}
	if pool.AddTransaction(tx1.Clone()) {
		t.Fatalf("TestTransactionPool: AddTransaction of a pooled transaction returned true")
	}
	if pool.Count() != 3 {
		t.Fatalf("TestTransactionPool: unexpected count. Want: 3, got: %d", pool.Count())
	}

	transactions := pool.Transactions()
	for i, expected := range []*externalapi.DomainTransaction{tx2, tx1, tx3} {
		if transactions[i] != expected {
			t.Fatalf("TestTransactionPool: transactions are not in insertion order at index %d", i)
		}
	}

	tx1ID := consensushashing.TransactionID(tx1)
	got, ok := pool.Transaction(tx1ID)
	if !ok || got != tx1 {
		t.Fatalf("TestTransactionPool: Transaction did not return the pooled transaction")
	}

	if !pool.RemoveTransaction(tx1ID) {
		t.Fatalf("TestTransactionPool: RemoveTransaction of a pooled transaction returned false")
	}
	if pool.RemoveTransaction(tx1ID) {
		t.Fatalf("TestTransactionPool: RemoveTransaction of a missing transaction returned true")
	}
	if pool.HasTransaction(tx1ID) || pool.Count() != 2 {
		t.Fatalf("TestTransactionPool: the transaction was not removed")
	}
	transactions = pool.Transactions()
	if transactions[0] != tx2 || transactions[1] != tx3 {
		t.Fatalf("TestTransactionPool: removal broke the insertion order")
	}

	transactions[0] = tx1
	if pool.Transactions()[0] != tx2 {
		t.Fatalf("TestTransactionPool: Transactions exposes the pool's storage")
	}
}
