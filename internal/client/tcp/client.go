package tcp

import (
	"bufio"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"io"
	"net"
	"strings"
	"time"

	"powsearch/internal/domain"
	"powsearch/internal/usecases"
	"powsearch/pkg/pow/digest"
)

type Client struct {
	cfg           *Config
	solverUsecase usecases.SolverUsecase
	logger        Logger
}

type Config struct {
	ServerAddr     string
	ConnectTimeout time.Duration
	RequestTimeout time.Duration
	SolveTimeout   time.Duration
	RetryAttempts  int
	RetryDelay     time.Duration
	MaxMessageSize int64
	BufferSize     int
	Sessions       int
}

// Logger is satisfied by *zap.SugaredLogger.
type Logger interface {
	Errorw(msg string, keysAndValues ...interface{})
	Infow(msg string, keysAndValues ...interface{})
	Debugw(msg string, keysAndValues ...interface{})
}

func NewClient(
	cfg *Config,
	solverUsecase usecases.SolverUsecase,
	logger Logger,
) *Client {
	return &Client{
		cfg:           cfg,
		solverUsecase: solverUsecase,
		logger:        logger,
	}
}

// Start runs cfg.Sessions sessions one after another. Retryable failures
// are retried up to cfg.RetryAttempts times each.
func (c *Client) Start(ctx context.Context) error {
	var lastErr error

	for session := 0; session < max(c.cfg.Sessions, 1); session++ {
		receipt, err := c.runWithRetry(ctx)
		if err != nil {
			lastErr = NewClientError("Start", err, "session failed")
			c.logger.Errorw("session error", "session", session+1, "error", err)
			if ctx.Err() != nil {
				return lastErr
			}
			continue
		}
		c.logger.Infow("received receipt", "session", session+1, "receipt", receipt)
	}

	return lastErr
}

func (c *Client) runWithRetry(ctx context.Context) (string, error) {
	var err error
	for attempt := 0; attempt <= c.cfg.RetryAttempts; attempt++ {
		if attempt > 0 {
			c.logger.Infow("retrying connection",
				"attempt", attempt+1,
				"max_attempts", c.cfg.RetryAttempts+1)
			select {
			case <-time.After(c.cfg.RetryDelay):
			case <-ctx.Done():
				return "", ctx.Err()
			}
		}

		var receipt string
		receipt, err = c.RunSession(ctx)
		if err == nil {
			return receipt, nil
		}
		if !IsRetryableError(err) {
			return "", err
		}
	}
	return "", NewClientError("runWithRetry", ErrMaxRetriesExceeded, err.Error())
}

// RunSession performs one full exchange and returns the receipt text.
func (c *Client) RunSession(ctx context.Context) (string, error) {
	connectCtx, cancel := context.WithTimeout(ctx, c.cfg.ConnectTimeout)
	defer cancel()

	conn, err := c.connect(connectCtx)
	if err != nil {
		return "", err
	}
	defer conn.Close()

	session := &ClientSession{
		conn:    conn,
		reader:  bufio.NewReaderSize(conn, c.cfg.BufferSize),
		writer:  bufio.NewWriterSize(conn, c.cfg.BufferSize),
		client:  c,
		context: ctx,
	}

	return session.Execute()
}

func (c *Client) connect(ctx context.Context) (net.Conn, error) {
	var d net.Dialer
	conn, err := d.DialContext(ctx, "tcp", c.cfg.ServerAddr)
	if err != nil {
		return nil, NewClientError("connect", err, "connection failed")
	}

	if err := conn.SetDeadline(time.Now().Add(c.cfg.RequestTimeout)); err != nil {
		conn.Close()
		return nil, NewClientError("connect", err, "setting timeout failed")
	}

	return conn, nil
}

type ClientSession struct {
	conn    net.Conn
	reader  *bufio.Reader
	writer  *bufio.Writer
	client  *Client
	context context.Context
}

type responseLine struct {
	response string
	err      error
}

func (s *ClientSession) Execute() (string, error) {
	pow, err := s.receiveChallenge()
	if err != nil {
		return "", err
	}

	nonce, err := s.solveChallenge(pow)
	if err != nil {
		return "", err
	}

	if err := s.conn.SetDeadline(time.Now().Add(s.client.cfg.RequestTimeout)); err != nil {
		return "", NewClientError("Execute", err, "setting timeout failed")
	}

	return s.sendSolutionAndGetResponse(pow.Digest, nonce)
}

func (s *ClientSession) receiveChallenge() (*domain.ProofOfWork, error) {
	code, err := s.reader.ReadByte()
	if err != nil {
		return nil, NewClientError("receiveChallenge", err, "reading digest failed")
	}
	digestName, err := digest.ByCode(code)
	if err != nil {
		return nil, NewClientError("receiveChallenge", ErrInvalidChallenge, err.Error())
	}

	var difficulty uint16
	if err := binary.Read(s.reader, binary.BigEndian, &difficulty); err != nil {
		return nil, NewClientError("receiveChallenge", err, "reading difficulty failed")
	}

	var length int32
	if err := binary.Read(s.reader, binary.BigEndian, &length); err != nil {
		return nil, NewClientError("receiveChallenge", err, "reading length failed")
	}

	if length <= 0 || int64(length) > s.client.cfg.MaxMessageSize {
		return nil, NewClientError("receiveChallenge", ErrInvalidMessageSize, "invalid challenge size")
	}

	data := make([]byte, length)
	if _, err := io.ReadFull(s.reader, data); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil, NewClientError("receiveChallenge", ErrConnectionClosed, "unexpected EOF")
		}
		return nil, NewClientError("receiveChallenge", err, "reading challenge failed")
	}

	s.client.logger.Debugw("challenge received",
		"digest", digestName,
		"difficulty", difficulty,
		"width", length)

	return &domain.ProofOfWork{
		Data:       data,
		Difficulty: int(difficulty),
		Digest:     digestName,
	}, nil
}

func (s *ClientSession) solveChallenge(pow *domain.ProofOfWork) ([]byte, error) {
	ctx := s.context
	if s.client.cfg.SolveTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.client.cfg.SolveTimeout)
		defer cancel()
	}

	res, err := s.client.solverUsecase.FindSolution(ctx, pow)
	if err != nil {
		return nil, NewClientError("solveChallenge", errors.Join(ErrSolutionNotFound, err), "no nonce found")
	}

	s.client.logger.Debugw("challenge solved",
		"nonce", hex.EncodeToString(res.Nonce),
		"attempts", res.Attempts,
		"elapsed", res.Elapsed)

	return res.Nonce, nil
}

func (s *ClientSession) sendSolutionAndGetResponse(digestName string, nonce []byte) (string, error) {
	errCh := make(chan error, 1)

	go func() {
		if _, err := s.writer.WriteString(digestName + "\n"); err != nil {
			errCh <- NewClientError("sendSolution", err, "sending digest failed")
			return
		}

		if _, err := s.writer.WriteString(hex.EncodeToString(nonce) + "\n"); err != nil {
			errCh <- NewClientError("sendSolution", err, "sending nonce failed")
			return
		}

		if err := s.writer.Flush(); err != nil {
			errCh <- NewClientError("sendSolution", err, "flush failed")
			return
		}

		errCh <- nil
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return "", err
		}
	case <-s.context.Done():
		return "", NewClientError("sendSolution", ErrWriteTimeout, "write timeout")
	}

	responseCh := make(chan responseLine, 1)

	go func() {
		response, err := s.reader.ReadString('\n')
		responseCh <- responseLine{response, err}
	}()

	select {
	case result := <-responseCh:
		if result.err != nil {
			return "", NewClientError("sendSolution", result.err, "reading response failed")
		}
		return s.handleResponse(strings.TrimSpace(result.response))
	case <-s.context.Done():
		return "", NewClientError("sendSolution", ErrReadTimeout, "read timeout")
	}
}

func (s *ClientSession) handleResponse(response string) (string, error) {
	if strings.HasPrefix(response, "SUCCESS:") {
		return strings.TrimPrefix(response, "SUCCESS:"), nil
	}

	if strings.HasPrefix(response, "ERROR:") {
		parts := strings.SplitN(strings.TrimPrefix(response, "ERROR:"), ":", 2)
		if len(parts) != 2 {
			return "", NewClientError("handleResponse", ErrInvalidProtocol, "invalid error format")
		}
		return "", NewClientError("handleResponse", &RejectedError{Code: parts[0]}, parts[1])
	}

	return "", NewClientError("handleResponse", ErrInvalidProtocol, "invalid response format")
}
