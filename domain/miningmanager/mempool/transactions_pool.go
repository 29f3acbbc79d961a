package mempool

import (
	"github.com/kaspanet/utxochain/domain/consensus/model/externalapi"
	"github.com/kaspanet/utxochain/domain/consensus/utils/consensushashing"
)

// TransactionPool holds transactions that were submitted but not yet
// included in a block, keyed by transaction ID and kept in insertion order.
// Transactions are not validated on insertion; they are validated when a
// block template is assembled from them.
//
// This type is NOT safe for concurrent access.
type TransactionPool struct {
	allTransactions map[externalapi.DomainTransactionID]*externalapi.DomainTransaction
	order           []externalapi.DomainTransactionID
}

// New returns a new, empty TransactionPool.
func New() *TransactionPool {
	return &TransactionPool{
		allTransactions: make(map[externalapi.DomainTransactionID]*externalapi.DomainTransaction),
	}
}

// AddTransaction adds transaction to the pool. Adding a transaction that is
// already in the pool does nothing. It returns whether the transaction was
// added.
func (tp *TransactionPool) AddTransaction(transaction *externalapi.DomainTransaction) bool {
	transactionID := consensushashing.TransactionID(transaction)
	if _, ok := tp.allTransactions[*transactionID]; ok {
		log.Tracef("Transaction %s is already in the pool", transactionID)
		return false
	}
	tp.allTransactions[*transactionID] = transaction
	tp.order = append(tp.order, *transactionID)
	log.Debugf("Added transaction %s to the pool. Pool size: %d", transactionID, len(tp.order))
	return true
}

// RemoveTransaction removes the transaction with the given ID from the pool
// and returns whether it was there.
func (tp *TransactionPool) RemoveTransaction(transactionID *externalapi.DomainTransactionID) bool {
	if _, ok := tp.allTransactions[*transactionID]; !ok {
		return false
	}
	delete(tp.allTransactions, *transactionID)
	for i, id := range tp.order {
		if id == *transactionID {
			tp.order = append(tp.order[:i], tp.order[i+1:]...)
			break
		}
	}
	log.Debugf("Removed transaction %s from the pool. Pool size: %d", transactionID, len(tp.order))
	return true
}

// Transaction returns the transaction with the given ID, if it is in the pool.
func (tp *TransactionPool) Transaction(transactionID *externalapi.DomainTransactionID) (*externalapi.DomainTransaction, bool) {
	transaction, ok := tp.allTransactions[*transactionID]
	return transaction, ok
}

// HasTransaction returns whether the transaction with the given ID is in the pool.
func (tp *TransactionPool) HasTransaction(transactionID *externalapi.DomainTransactionID) bool {
	_, ok := tp.allTransactions[*transactionID]
	return ok
}

// Transactions returns the pooled transactions in insertion order.
func (tp *TransactionPool) Transactions() []*externalapi.DomainTransaction {
	transactions := make([]*externalapi.DomainTransaction, len(tp.order))
	for i, transactionID := range tp.order {
		transactions[i] = tp.allTransactions[transactionID]
	}
	return transactions
}

// Count returns the number of transactions in the pool.
func (tp *TransactionPool) Count() int {
	return len(tp.order)
}
