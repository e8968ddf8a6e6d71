package config

import (
	"fmt"
)

type TopicKeyStruct struct{}

func NewTopicKeyStruct() *TopicKeyStruct {
	return &TopicKeyStruct{}
}

// User returns the personal notification topic of a user
func (r *TopicKeyStruct) User(userID int) string {
	return fmt.Sprintf("user_%d", userID)
}

// Class returns the topic carrying events scoped to a class
func (r *TopicKeyStruct) Class(classID int) string {
	return fmt.Sprintf("class:%d", classID)
}

// Assignment returns the topic carrying events scoped to an assignment
func (r *TopicKeyStruct) Assignment(assignmentID int) string {
	return fmt.Sprintf("assignment:%d", assignmentID)
}

// Submission returns the topic carrying events scoped to a submission
func (r *TopicKeyStruct) Submission(submissionID int) string {
	return fmt.Sprintf("submission:%d", submissionID)
}

// Channel returns the Redis PubSub channel name backing a topic
func (r *TopicKeyStruct) Channel(prefix, topic string) string {
	return prefix + topic
}

var TopicKey = NewTopicKeyStruct()
