package initial

import (
	"context"

	"WrapDesk/internal/config"
	"WrapDesk/internal/modules/notification/application/service"
	"WrapDesk/internal/modules/notification/infrastructure/mq"
	"WrapDesk/internal/modules/notification/infrastructure/mq/kafka"
	"WrapDesk/internal/modules/notification/infrastructure/queue"
	"WrapDesk/pkg/zlog"
)

// InitKafkaPublisher 创建通知事件发布者，未启用或失败时返回 nil，调用方按 nil 跳过发布
func InitKafkaPublisher() mq.Publisher {
	conf := config.GetConfig()
	if !conf.KafkaConfig.Enabled {
		zlog.Info("Kafka 未启用，跳过事件发布")
		return nil
	}

	publisher, err := kafka.NewSaramaPublisher(kafka.PublisherConfig{
		Brokers:  conf.KafkaConfig.Brokers,
		ClientID: conf.KafkaConfig.ClientID,
	})
	if err != nil {
		zlog.Error("Kafka publisher 初始化失败: " + err.Error())
		return nil
	}
	return publisher
}

// StartEventConsumer 启动业务事件消费，把订单/安装/设计/客户事件转成通知
func StartEventConsumer(svc service.NotificationService) {
	conf := config.GetConfig()
	if !conf.KafkaConfig.Enabled || conf.KafkaConfig.EventTopic == "" {
		return
	}

	consumer, err := kafka.NewConsumer(kafka.ConsumerConfig{
		Brokers:  conf.KafkaConfig.Brokers,
		GroupID:  conf.KafkaConfig.ConsumerGroupID,
		Topics:   []string{conf.KafkaConfig.EventTopic},
		ClientID: conf.KafkaConfig.ClientID,
	})
	if err != nil {
		zlog.Error("Kafka consumer 初始化失败: " + err.Error())
		return
	}

	worker := queue.NewEventConsumerWorker(consumer, svc)
	go func() {
		if err := worker.Run(context.Background()); err != nil {
			zlog.Error("business event consumer exited: " + err.Error())
		}
	}()
	zlog.Info("Business event consumer started")
}
