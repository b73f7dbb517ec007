// internal/funding/sns.go
package funding

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	awssdk "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"idea-lab/internal/common/aws"
)

var ErrPublishFailed = errors.New("NOTIFICATION_SEND_FAILED")

// SNSPublisher publishes milestone events to a topic.
type SNSPublisher struct {
	client   aws.SNSAPI
	topicARN string
}

func NewSNSPublisher(client aws.SNSAPI, topicARN string) *SNSPublisher {
	return &SNSPublisher{client: client, topicARN: topicARN}
}

func (s *SNSPublisher) PublishMilestone(ctx context.Context, e Event) error {
	body, err := json.Marshal(e)
	if err != nil {
		return err
	}
	_, err = s.client.Publish(ctx, &sns.PublishInput{
		TopicArn: awssdk.String(s.topicARN),
		Subject:  awssdk.String(fmt.Sprintf("Milestone %s: %s", e.Milestone.Status, e.Milestone.PhaseName)),
		Message:  awssdk.String(string(body)),
		MessageAttributes: map[string]types.MessageAttributeValue{
			"status": {DataType: awssdk.String("String"), StringValue: awssdk.String(string(e.Milestone.Status))},
			"ideaId": {DataType: awssdk.String("String"), StringValue: awssdk.String(e.IdeaID)},
		},
	})
	if err != nil {
		return fmt.Errorf("%w: sns: %v", ErrPublishFailed, err)
	}
	return nil
}
