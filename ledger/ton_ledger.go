package ledger

import (
	"context"
	"fmt"

	"borrowbot/models"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"github.com/xssnick/tonutils-go/address"
	"github.com/xssnick/tonutils-go/liteclient"
	"github.com/xssnick/tonutils-go/tlb"
	"github.com/xssnick/tonutils-go/ton"
	"github.com/xssnick/tonutils-go/ton/wallet"
)

// TonLedger reads balances and sends transfers through TON liteservers
type TonLedger struct {
	pool *liteclient.ConnectionPool
	api  ton.APIClientWrapped
}

// Connect dials the liteservers listed in the global config at configURL
func Connect(ctx context.Context, configURL string) (*TonLedger, error) {
	pool := liteclient.NewConnectionPool()
	if err := pool.AddConnectionsFromConfigUrl(ctx, configURL); err != nil {
		return nil, fmt.Errorf("failed to connect to liteservers: %w", err)
	}

	log.WithField("config", configURL).Info("Connected to TON liteservers")

	return &TonLedger{
		pool: pool,
		api:  ton.NewAPIClient(pool).WithRetry(),
	}, nil
}

// Close stops all liteserver connections
func (l *TonLedger) Close() {
	l.pool.Stop()
}

// ReadBalance returns the wallet balance in TON
func (l *TonLedger) ReadBalance(ctx context.Context, account models.Wallet) (decimal.Decimal, error) {
	w, err := l.open(account)
	if err != nil {
		return decimal.Zero, err
	}

	block, err := l.api.CurrentMasterchainInfo(ctx)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get masterchain info: %w", err)
	}

	balance, err := w.GetBalance(ctx, block)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance of %s: %w", w.WalletAddress(), err)
	}
	return nanoToTon(balance), nil
}

// SubmitTransfer sends amount TON with a text comment, paying fees on top of the amount.
// It returns once the external message is accepted; the wallet seqno is read fresh on each call.
func (l *TonLedger) SubmitTransfer(ctx context.Context, account models.Wallet, destination string, amount decimal.Decimal, memo string) error {
	w, err := l.open(account)
	if err != nil {
		return err
	}

	to, err := address.ParseAddr(destination)
	if err != nil {
		return fmt.Errorf("invalid destination %q: %w", destination, err)
	}

	coins, err := tlb.FromTON(amount.String())
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", amount, err)
	}

	body, err := wallet.CreateCommentCell(memo)
	if err != nil {
		return fmt.Errorf("failed to encode memo: %w", err)
	}

	msg := wallet.SimpleMessage(to, coins, body)
	msg.Mode = wallet.PayGasSeparately

	if err := w.Send(ctx, msg, false); err != nil {
		return fmt.Errorf("failed to send transfer from %s: %w", w.WalletAddress(), err)
	}
	return nil
}

func (l *TonLedger) open(account models.Wallet) (*wallet.Wallet, error) {
	key, err := ParsePrivateKey(account.PrivateKey)
	if err != nil {
		return nil, err
	}

	w, err := wallet.FromPrivateKey(l.api, key, wallet.V4R2)
	if err != nil {
		return nil, fmt.Errorf("failed to open wallet: %w", err)
	}

	if account.Address != "" && !addressMatches(w.WalletAddress(), account.Address) {
		log.WithFields(log.Fields{
			"stored":  account.Address,
			"derived": w.WalletAddress().String(),
		}).Warn("Stored wallet address differs from the key's V4R2 address")
	}
	return w, nil
}

func addressMatches(derived *address.Address, stored string) bool {
	parsed, err := address.ParseAddr(stored)
	if err != nil {
		return false
	}
	return parsed.StringRaw() == derived.StringRaw()
}

func nanoToTon(coins tlb.Coins) decimal.Decimal {
	return decimal.NewFromBigInt(coins.Nano(), -9)
}
