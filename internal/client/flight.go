package client

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/apache/arrow-go/v18/arrow"
	"github.com/apache/arrow-go/v18/arrow/flight"
	"github.com/apache/arrow-go/v18/arrow/ipc"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// ErrUnexpectedSchema is returned when a DoGet stream is not a pair stream.
var ErrUnexpectedSchema = errors.New("unexpected flight schema")

// FlightClient exchanges training pairs with a Flight server.
type FlightClient struct {
	client flight.Client
	conn   *grpc.ClientConn
}

// NewFlightClient creates a Flight client for addr. The connection is
// established lazily on the first call.
func NewFlightClient(addr string) (*FlightClient, error) {
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &FlightClient{
		client: flight.NewClientFromConn(conn, nil),
		conn:   conn,
	}, nil
}

// DoPut streams record to the dataset path on the server.
func (c *FlightClient) DoPut(ctx context.Context, datasetName string, record arrow.RecordBatch) error {
	stream, err := c.client.DoPut(ctx)
	if err != nil {
		return err
	}

	writer := flight.NewRecordWriter(stream, ipc.WithSchema(record.Schema()))
	writer.SetFlightDescriptor(&flight.FlightDescriptor{
		Type: flight.DescriptorPATH,
		Path: []string{datasetName},
	})

	if err := writer.Write(record); err != nil {
		_ = writer.Close()
		return err
	}
	if err := writer.Close(); err != nil {
		return err
	}
	if err := stream.CloseSend(); err != nil {
		return err
	}

	// Drain put results so server-side errors surface here.
	for {
		if _, err := stream.Recv(); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// DoGet fetches the pair stream for ticket and calls fn for each record.
// The record is only valid for the duration of the call.
func (c *FlightClient) DoGet(ctx context.Context, ticket []byte, fn func(arrow.RecordBatch) error) error {
	stream, err := c.client.DoGet(ctx, &flight.Ticket{Ticket: ticket})
	if err != nil {
		return err
	}

	reader, err := flight.NewRecordReader(stream)
	if err != nil {
		return err
	}
	defer reader.Release()

	if !reader.Schema().Equal(PairSchema) {
		return fmt.Errorf("%w: %s", ErrUnexpectedSchema, reader.Schema())
	}
	for reader.Next() {
		if err := fn(reader.Record()); err != nil {
			return err
		}
	}
	return reader.Err()
}

// Close closes the client connection.
func (c *FlightClient) Close() error {
	return c.conn.Close()
}
